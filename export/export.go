// Package export turns a validated manifest into a complete, runnable
// agent project: LangChain/FastAPI source, configuration, container
// descriptors and a pytest suite, produced entirely in memory.
//
// Output is deterministic: exporting the same manifest with the same
// options yields byte-identical file content. Export either returns the
// full file set or an error — partial output is never surfaced.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/codegen/memgen"
	"github.com/blueflyio/openstandardagents/codegen/streamgen"
	"github.com/blueflyio/openstandardagents/codegen/testgen"
	"github.com/blueflyio/openstandardagents/codegen/toolgen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// Result is the outcome of one export run.
type Result struct {
	Files    *codegen.FileSet
	Metadata Metadata
}

// Metadata describes an export run. It lives alongside the files, never
// inside them, so file content stays reproducible.
type Metadata struct {
	ExportID      string
	AgentName     string
	Framework     string
	FileCount     int
	TestFileCount int
	ToolCount     int
	MemoryBackend string
	Transports    []string
	Duration      time.Duration
	Warnings      []string
}

// Export runs the full generation pipeline for a loaded manifest.
func Export(ctx context.Context, m *manifest.Manifest, opts pipeline.Options, logger *zap.Logger) (*Result, error) {
	start := time.Now()
	ec := pipeline.NewExportContext(m, opts, logger)

	p := pipeline.New(
		&toolgen.Stage{},
		&memgen.Stage{},
		&streamgen.Stage{},
		&entrypointStage{},
		&openapiStage{},
		&requirementsStage{},
		&dockerStage{},
		&manifestEchoStage{},
		&testgen.Stage{},
		&readmeStage{},
	)
	if err := p.Run(ctx, ec); err != nil {
		return nil, fmt.Errorf("exporting %s: %w", m.Metadata.Name, err)
	}

	result := &Result{
		Files: ec.Files,
		Metadata: Metadata{
			ExportID:      uuid.NewString(),
			AgentName:     m.Metadata.Name,
			Framework:     "langchain",
			FileCount:     ec.Files.Len(),
			TestFileCount: ec.Files.CountByType()[codegen.FileTest],
			ToolCount:     len(m.Spec.Tools),
			MemoryBackend: ec.MemoryBackend,
			Transports:    ec.Transports,
			Duration:      time.Since(start),
			Warnings:      ec.Warnings,
		},
	}
	return result, nil
}

// ExportRaw loads a manifest from raw YAML or JSON bytes and exports it.
func ExportRaw(ctx context.Context, raw []byte, opts pipeline.Options, logger *zap.Logger) (*Result, error) {
	m, err := manifest.Load(raw)
	if err != nil {
		return nil, err
	}
	return Export(ctx, m, opts, logger)
}
