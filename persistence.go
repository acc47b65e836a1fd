package specsync

import (
	"fmt"
	"os"
	"path/filepath"

	internalconfig "github.com/agentstation/specsync/internal/config"
	"github.com/agentstation/specsync/pkg/errors"
	"github.com/agentstation/specsync/pkg/provenance"
	"github.com/agentstation/specsync/pkg/reconcile"
)

// runIDVariable is the environment variable exported for subsequent CI
// steps to pick up.
const runIDVariable = "AUTODOC_RUN_ID"

// writeResult persists the merged spec and its provenance side-table.
func (s *syncer) writeResult(result *reconcile.Result) error {
	if err := writeFileAtomic(s.config.specFile, result.Serialized); err != nil {
		return err
	}
	return provenance.Save(s.config.provenancePath(), result.Provenance)
}

// writeFileAtomic writes data via a temp file in the target directory
// followed by a rename, so readers never observe a partial spec.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck,gosec // already failing
		os.Remove(tmpName)    //nolint:errcheck,gosec // best effort cleanup
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // best effort cleanup
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // best effort cleanup
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// exportRunID appends the run id to the GitHub Actions environment file
// so later workflow steps can reference it. A missing GITHUB_ENV is not
// an error; the pipeline also runs outside CI.
func exportRunID(runID int64) error {
	envFile := os.Getenv(internalconfig.EnvGitHubEnv)
	if envFile == "" {
		return nil
	}

	f, err := os.OpenFile(envFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // CI-owned path
	if err != nil {
		return errors.WrapIO("write", envFile, err)
	}
	defer f.Close() //nolint:errcheck // append-only handle

	if _, err := fmt.Fprintf(f, "%s=%d\n", runIDVariable, runID); err != nil {
		return errors.WrapIO("write", envFile, err)
	}
	return nil
}
