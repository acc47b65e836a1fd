package runllm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/internal/generation/runllm"
	"github.com/agentstation/specsync/pkg/errors"
)

// newServer runs a fake autodoc service for one test.
func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestRegisterRunEnsuresRepository(t *testing.T) {
	var createdRepo, createdRun bool
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		switch r.URL.Path {
		case "/api/repositories":
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		case "/api/repository":
			createdRepo = true
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "acme/books", payload["name"])
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "acme/books"})
		case "/api/autodoc":
			createdRun = true
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, float64(7), payload["repo_id"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"run_id":                42,
				"file_path_to_language": map[string]string{"api/books.py": "python"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	run, err := client.RegisterRun(context.Background(), "https://ci.example.com/run/1", []string{"api/books.py"})
	require.NoError(t, err)

	assert.True(t, createdRepo)
	assert.True(t, createdRun)
	assert.Equal(t, int64(42), run.ID)
	assert.Equal(t, "python", run.FileLanguages["api/books.py"])
}

func TestRegisterRunReusesExistingRepository(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/repositories":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 3, "name": "acme/books"},
			})
		case "/api/autodoc":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, float64(3), payload["repo_id"])
			_ = json.NewEncoder(w).Encode(map[string]any{"run_id": 1})
		case "/api/repository":
			t.Error("should not create a repository that already exists")
		}
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	_, err := client.RegisterRun(context.Background(), "", nil)
	require.NoError(t, err)
}

func TestGenerateSpec(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/autodoc/42", r.URL.Path)
		assert.Equal(t, "api/books.py", r.URL.Query().Get("file_path"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "openapi", payload["output_mode"])
		assert.Equal(t, "python", payload["language"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"documented_content": "openapi: 3.0.0\n",
			"tokens_used":        1500,
		})
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	result, err := client.GenerateSpec(context.Background(), generation.Request{
		RunID:       42,
		FilePath:    "api/books.py",
		FileContent: "def list_books(): pass",
		Language:    "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.0.0\n", result.Content)
	assert.Equal(t, 1500, result.TokensUsed)
}

func TestExplain(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/autodoc/42/explanation", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"explanation": "Added the POST /books operation.",
			"tokens_used": 200,
		})
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	explanation, err := client.Explain(context.Background(), 42, "diff --git a/x b/x")
	require.NoError(t, err)
	assert.Equal(t, "Added the POST /books operation.", explanation.Text)
	assert.Equal(t, 200, explanation.TokensUsed)
}

func TestMarkCompletedAndFailed(t *testing.T) {
	var statuses []string
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/autodoc/42", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		statuses = append(statuses, payload["status"])
		w.WriteHeader(http.StatusOK)
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	require.NoError(t, client.MarkCompleted(context.Background(), 42, "https://github.com/acme/books/pull/9"))
	require.NoError(t, client.MarkFailed(context.Background(), 42, "generation timed out"))
	assert.Equal(t, []string{"Succeeded", "Failed"}, statuses)
}

func TestServerErrorsSurfaceAsAPIErrors(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	})

	client := runllm.New(server.URL, "secret", "acme/books")
	_, err := client.ListRepositories(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "rate limit exceeded")
}
