package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// DefaultAPIPort is used when the export options leave the port unset.
const DefaultAPIPort = 8000

// entrypointData is the template payload shared by the entrypoint,
// requirements, docker and readme stages.
type entrypointData struct {
	AgentName   string
	AgentIdent  string
	Role        string
	Description string

	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	Anthropic   bool

	HasTools   bool
	HasAPITool bool
	HasMCPTool bool
	Tools      []manifest.ToolSpec

	Memory     string
	Persistent bool
	Connection string

	Streaming bool
	SSE       bool
	WebSocket bool
	A2A       bool

	SSEEndpoint string
	WSEndpoint  string
	A2AEndpoint string

	API           bool
	Port          int
	PythonVersion string
	Tests         bool
}

// buildEntrypointData derives the shared payload from the resolved export
// context. It must run after the memory and streaming stages so the
// resolved backend and transport set are in place.
func buildEntrypointData(ec *pipeline.ExportContext) entrypointData {
	m := ec.Manifest
	data := entrypointData{
		AgentName:   m.Metadata.Name,
		AgentIdent:  manifest.PyIdent(m.Metadata.Name),
		Role:        m.Spec.Role,
		Description: m.Metadata.Description,

		Provider:    m.Spec.LLM.Provider,
		Model:       m.Spec.LLM.Model,
		Temperature: m.Spec.LLM.Temperature,
		MaxTokens:   m.Spec.LLM.MaxTokens,
		Anthropic:   m.Spec.LLM.Provider == "anthropic",

		HasTools: len(m.Spec.Tools) > 0,
		Tools:    m.Spec.Tools,

		Memory:     ec.MemoryBackend,
		Persistent: manifest.MemoryType(ec.MemoryBackend).IsPersistent(),

		SSEEndpoint: manifest.DefaultSSEEndpoint,
		WSEndpoint:  manifest.DefaultWSEndpoint,
		A2AEndpoint: manifest.DefaultA2AEndpoint,

		API:           ec.Opts.IncludeAPI,
		Port:          ec.Opts.APIPort,
		PythonVersion: ec.Opts.PythonVersion,
		Tests:         ec.Opts.IncludeTests,
	}
	if data.Port == 0 {
		data.Port = DefaultAPIPort
	}
	if data.PythonVersion == "" {
		data.PythonVersion = "3.11"
	}
	for i := range m.Spec.Tools {
		switch m.Spec.Tools[i].Type {
		case manifest.ToolAPI:
			data.HasAPITool = true
		case manifest.ToolMCP:
			data.HasMCPTool = true
		}
	}
	if mem := m.Spec.Memory; mem != nil && mem.Persistence != nil {
		data.Connection = mem.Persistence.Connection
	}
	for _, t := range ec.Transports {
		data.Streaming = true
		switch t {
		case "sse":
			data.SSE = true
		case "websocket":
			data.WebSocket = true
		case "a2a":
			data.A2A = true
		}
	}
	if s := m.Spec.Streaming; s != nil {
		if s.SSE != nil && s.SSE.Endpoint != "" {
			data.SSEEndpoint = s.SSE.Endpoint
		}
		if s.WebSocket != nil && s.WebSocket.Endpoint != "" {
			data.WSEndpoint = s.WebSocket.Endpoint
		}
		if s.A2A != nil && s.A2A.Endpoint != "" {
			data.A2AEndpoint = s.A2A.Endpoint
		}
	}
	return data
}

// entrypointStage emits the agent entrypoint module.
type entrypointStage struct{}

func (s *entrypointStage) Name() string { return "generate-entrypoint" }

func (s *entrypointStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	content, err := codegen.Render("agent.py.tmpl", buildEntrypointData(ec))
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "agent.py",
		Content: content,
		Type:    codegen.FileSource,
	})
}

// requirementsStage emits the pinned dependency manifest for the
// generated project.
type requirementsStage struct{}

func (s *requirementsStage) Name() string { return "generate-requirements" }

func (s *requirementsStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	content, err := codegen.Render("requirements.txt.tmpl", buildEntrypointData(ec))
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "requirements.txt",
		Content: content,
		Type:    codegen.FileConfig,
	})
}

// manifestEchoStage embeds the normalized manifest in the output so a
// generated project records exactly what it was built from.
type manifestEchoStage struct{}

func (s *manifestEchoStage) Name() string { return "echo-manifest" }

func (s *manifestEchoStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	out, err := json.MarshalIndent(ec.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest echo: %w", err)
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "agent.manifest.json",
		Content: string(out) + "\n",
		Type:    codegen.FileConfig,
	})
}

// readmeStage emits the project README.
type readmeStage struct{}

func (s *readmeStage) Name() string { return "generate-readme" }

func (s *readmeStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	content, err := codegen.Render("README.md.tmpl", buildEntrypointData(ec))
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "README.md",
		Content: content,
		Type:    codegen.FileDoc,
	})
}
