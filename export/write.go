package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write materializes the generated file set under dir, creating parent
// directories as needed. Paths in the set are slash-separated and
// relative; anything escaping dir is rejected.
func (r *Result) Write(dir string) error {
	for _, f := range r.Files.Sorted() {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		rel, err := filepath.Rel(dir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("generated path %q escapes output directory", f.Path)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	return nil
}
