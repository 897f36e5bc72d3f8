// Package memgen generates the memory module of an exported agent.
//
// Exactly one backend variant is emitted per export, selected from the
// manifest (or overridden by export options). All variants expose the same
// four-operation contract: get_memory, clear_memory, get_memory_stats and,
// for persistent backends, health_check. Persistent backends validate
// their connection eagerly with bounded retry and never fall back to an
// in-memory store.
package memgen

import (
	"context"
	"fmt"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// Stage emits memory.py when a backend is requested.
type Stage struct{}

func (s *Stage) Name() string { return "generate-memory" }

func (s *Stage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	spec, err := Resolve(ec.Manifest, ec.Opts.MemoryBackend)
	if err != nil {
		return err
	}
	if spec == nil {
		return nil
	}
	ec.MemoryBackend = string(spec.Type)

	content, err := Generate(ec.Manifest, spec)
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "memory.py",
		Content: content,
		Type:    codegen.FileSource,
	})
}

// Resolve determines the effective memory spec for an export. An options
// override replaces the manifest's backend type but keeps its settings.
// Returns nil when no backend is requested at all.
func Resolve(m *manifest.Manifest, override string) (*manifest.MemorySpec, error) {
	var spec manifest.MemorySpec
	switch {
	case override != "":
		if m.Spec.Memory != nil {
			spec = *m.Spec.Memory
		}
		spec.Type = manifest.MemoryType(override)
	case m.Spec.Memory != nil:
		spec = *m.Spec.Memory
	default:
		return nil, nil
	}

	switch spec.Type {
	case manifest.MemoryBuffer:
		if spec.WindowSize == 0 {
			spec.WindowSize = manifest.DefaultWindowSize
		}
	case manifest.MemorySummary:
		if spec.MaxTokenLimit == 0 {
			spec.MaxTokenLimit = manifest.DefaultMaxTokenLimit
		}
	case manifest.MemoryEntity:
	case manifest.MemoryRedis, manifest.MemoryPostgres:
		if spec.Persistence == nil || spec.Persistence.Connection == "" {
			return nil, fmt.Errorf("%s backend requires a persistence connection", spec.Type)
		}
		if spec.Persistence.PoolSize == 0 {
			spec.Persistence.PoolSize = manifest.DefaultPoolSize
		}
		if spec.Persistence.TimeoutSeconds == 0 {
			spec.Persistence.TimeoutSeconds = manifest.DefaultTimeoutSeconds
		}
	default:
		return nil, fmt.Errorf("unknown memory backend %q", spec.Type)
	}
	return &spec, nil
}

type templateData struct {
	AgentName      string
	AgentIdent     string
	WindowSize     int
	MaxTokenLimit  int
	SummaryModel   string
	Connection     string
	PoolSize       int
	TimeoutSeconds int
	TTLSeconds     int
}

// Generate renders the memory module for the resolved backend.
func Generate(m *manifest.Manifest, spec *manifest.MemorySpec) (string, error) {
	data := templateData{
		AgentName:     m.Metadata.Name,
		AgentIdent:    manifest.PyIdent(m.Metadata.Name),
		WindowSize:    spec.WindowSize,
		MaxTokenLimit: spec.MaxTokenLimit,
		SummaryModel:  SummaryModel(m.Spec.LLM),
	}
	if p := spec.Persistence; p != nil {
		data.Connection = p.Connection
		data.PoolSize = p.PoolSize
		data.TimeoutSeconds = p.TimeoutSeconds
		data.TTLSeconds = p.TTLSeconds
	}
	return codegen.Render(fmt.Sprintf("memory_%s.py.tmpl", spec.Type), data)
}

// SummaryModel picks a cheaper, faster model than the main agent LLM for
// rolling summarization. The asymmetry is deliberate: summaries are a
// cost-control measure and must not run on the primary model.
func SummaryModel(llm *manifest.LLMConfig) string {
	if llm == nil {
		return "gpt-4o-mini"
	}
	switch llm.Provider {
	case "anthropic":
		return "claude-3-haiku-20240307"
	default:
		return "gpt-4o-mini"
	}
}
