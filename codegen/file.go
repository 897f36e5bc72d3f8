// Package codegen provides the shared substrate for all generator
// components: the generated-file model, JSON-Schema field translation, and
// template rendering.
package codegen

import (
	"fmt"
	"sort"
)

// FileType classifies a generated file.
type FileType string

const (
	FileSource  FileType = "source"
	FileConfig  FileType = "config"
	FileTest    FileType = "test"
	FileFixture FileType = "fixture"
	FileDoc     FileType = "doc"
)

// File is one generated output unit. Content is final; the orchestrator
// never rewrites files after a component has produced them.
type File struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Type    FileType `json:"type"`
}

// FileSet accumulates generated files in insertion order and rejects path
// collisions. Two components writing the same path is a hard error, never
// a silent overwrite.
type FileSet struct {
	files []File
	owner map[string]string // path -> contributing component
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{owner: make(map[string]string)}
}

// Add records a file contributed by the named component. It returns an
// error naming both contributors when the path is already taken.
func (fs *FileSet) Add(component string, f File) error {
	if f.Path == "" {
		return fmt.Errorf("%s produced a file with an empty path", component)
	}
	if prev, ok := fs.owner[f.Path]; ok {
		return fmt.Errorf("path collision on %q: already written by %s, rewritten by %s", f.Path, prev, component)
	}
	fs.owner[f.Path] = component
	fs.files = append(fs.files, f)
	return nil
}

// AddAll records multiple files from one component, stopping on the first
// collision.
func (fs *FileSet) AddAll(component string, files []File) error {
	for _, f := range files {
		if err := fs.Add(component, f); err != nil {
			return err
		}
	}
	return nil
}

// Files returns the accumulated files in insertion order.
func (fs *FileSet) Files() []File {
	out := make([]File, len(fs.files))
	copy(out, fs.files)
	return out
}

// Sorted returns the files ordered by path.
func (fs *FileSet) Sorted() []File {
	out := fs.Files()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of accumulated files.
func (fs *FileSet) Len() int { return len(fs.files) }

// CountByType returns per-type file counts.
func (fs *FileSet) CountByType() map[FileType]int {
	counts := make(map[FileType]int)
	for _, f := range fs.files {
		counts[f.Type]++
	}
	return counts
}
