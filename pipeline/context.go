package pipeline

import (
	"go.uber.org/zap"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
)

// Options carries the caller-facing export options through the pipeline.
type Options struct {
	PythonVersion  string
	IncludeAPI     bool
	IncludeOpenAPI bool
	IncludeDocker  bool
	IncludeTests   bool

	// MemoryBackend overrides the manifest's memory type when non-empty.
	MemoryBackend string

	// Transports overrides the manifest's enabled transport set when
	// non-nil (names: sse, websocket, a2a).
	Transports []string

	APIPort int
}

// ExportContext carries all state through one export run. The manifest is
// read-only; stages contribute files through the FileSet, which rejects
// path collisions.
type ExportContext struct {
	Manifest *manifest.Manifest
	Opts     Options
	Files    *codegen.FileSet
	Logger   *zap.Logger

	Warnings []string

	// Resolved during the run.
	MemoryBackend string
	Transports    []string
}

// NewExportContext creates a context for one export run. A nil logger is
// replaced with a no-op logger.
func NewExportContext(m *manifest.Manifest, opts Options, logger *zap.Logger) *ExportContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportContext{
		Manifest: m,
		Opts:     opts,
		Files:    codegen.NewFileSet(),
		Logger:   logger,
	}
}

// AddWarning appends a warning message to the export context.
func (ec *ExportContext) AddWarning(msg string) {
	ec.Warnings = append(ec.Warnings, msg)
}
