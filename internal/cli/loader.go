package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/qbuilder/internal/catalog"
	"github.com/roach88/qbuilder/internal/session"
)

// loadModel loads the CUE model directory, reporting failures through f.
func loadModel(f *OutputFormatter, dir, name string) (*catalog.Model, error) {
	m, err := catalog.LoadDir(dir, name)
	if err != nil {
		var ce *catalog.CompileError
		if errors.As(err, &ce) {
			return nil, f.Fail(ExitCommandError, ErrCodeModel, "invalid model", err)
		}
		return nil, f.Fail(ExitCommandError, ErrCodeModel, fmt.Sprintf("loading model from %s", dir), err)
	}
	caps := m.Capabilities()
	f.VerboseLog("Loaded model %s (%d tables, treatas=%t)", caps.Model, len(m.ListTables()), caps.TreatAs)
	return m, nil
}

// readSessionFile decodes a YAML or JSON session file.
func readSessionFile(f *OutputFormatter, path string) (session.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Document{}, f.Fail(ExitCommandError, ErrCodeSession, "reading session file", err)
	}
	doc, err := session.Unmarshal(data, session.FormatForPath(path))
	if err != nil {
		return session.Document{}, f.Fail(ExitCommandError, ErrCodeSession, fmt.Sprintf("decoding %s", path), err)
	}
	return doc, nil
}

// writeSessionFile encodes doc to path, choosing the format by extension.
func writeSessionFile(path string, doc session.Document) error {
	data, err := session.Marshal(doc, session.FormatForPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// problemStrings renders load problems for output.
func problemStrings(result *session.LoadResult) []string {
	out := make([]string, len(result.Problems))
	for i, p := range result.Problems {
		out[i] = p.Error()
	}
	return out
}
