package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/store"
)

// errDatabaseNotFound is returned when --db names a missing file.
var errDatabaseNotFound = errors.New("database not found")

// LoadError represents a scenario discovery or loading failure.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// FindScenarioFiles returns every scenario file under dir in lexical order.
// A non-empty filter is a glob matched against the file name without its
// extension. Files under a "golden" directory are skipped.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scenarios directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing scenarios directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("invalid filter pattern: %v", err)}
		}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		if !harness.IsScenarioFile(path) {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}

	slices.Sort(files)
	return files, nil
}

// scenarioFormat returns the store format name for a scenario file.
func scenarioFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return "cue"
	}
	return "yaml"
}

// parseScenarioSource parses scenario bytes in the given format.
func parseScenarioSource(name, format string, data []byte) (*harness.Scenario, error) {
	switch format {
	case "yaml":
		return harness.ParseYAML(data)
	case "cue":
		return harness.ParseCUE(name+".cue", data)
	}
	return nil, fmt.Errorf("unknown scenario format %q", format)
}

// openExistingStore opens a database that must already exist, so a typo in
// --db is reported instead of silently creating an empty file.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errDatabaseNotFound, path)
	}
	return store.Open(path)
}
