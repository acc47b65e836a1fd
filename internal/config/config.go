// Package config provides access to specsync configuration values from
// Viper and the environment.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Environment variable names read by the pipeline.
const (
	// EnvRunLLMAPIKey holds the autodoc service API key.
	EnvRunLLMAPIKey = "RUNLLM_API_KEY"

	// EnvGeminiAPIKey holds the Gemini API key.
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// EnvGoogleAPIKey is the fallback key name the genai SDK also honors.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"

	// EnvRepoName holds the owner/repo the run belongs to.
	EnvRepoName = "GITHUB_REPO_NAME"

	// EnvActionURL holds the URL of the CI run that triggered the sync.
	EnvActionURL = "GH_ACTION_URL"

	// EnvGitHubEnv is the file GitHub Actions reads exported variables from.
	EnvGitHubEnv = "GITHUB_ENV"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// RunLLMAPIKey returns the configured autodoc service API key.
func RunLLMAPIKey() string {
	return GetString(EnvRunLLMAPIKey)
}

// GeminiAPIKey returns the configured Gemini API key, honoring both key
// names the SDK accepts.
func GeminiAPIKey() string {
	if key := GetString(EnvGeminiAPIKey); key != "" {
		return key
	}
	return GetString(EnvGoogleAPIKey)
}

// RepoName returns the owner/repo name for run registration.
func RepoName() string {
	return GetString(EnvRepoName)
}

// ActionURL returns the CI run URL for run registration.
func ActionURL() string {
	return GetString(EnvActionURL)
}
