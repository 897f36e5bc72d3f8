package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the manifest omits optional settings.
const (
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2000
	DefaultWindowSize     = 10
	DefaultMaxTokenLimit  = 2000
	DefaultPoolSize       = 10
	DefaultTimeoutSeconds = 5
	DefaultSSEEndpoint    = "/chat/stream"
	DefaultWSEndpoint     = "/chat/ws"
	DefaultA2AEndpoint    = "/a2a"
	DefaultProvider       = "openai"
	DefaultModel          = "gpt-4"
)

// Load parses a YAML or JSON manifest, applies defaults, and validates
// every structural invariant. On failure it returns a *ValidationError
// listing all violations, never just the first.
func Load(raw []byte) (*Manifest, error) {
	m, err := decode(raw)
	if err != nil {
		return nil, err
	}
	normalize(m)
	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile reads and loads a manifest from disk.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Load(data)
}

// decode accepts JSON directly; YAML is round-tripped through a generic
// document so json.RawMessage fields (tool input schemas) decode cleanly.
func decode(raw []byte) (*Manifest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty manifest")
	}

	jsonData := trimmed
	if trimmed[0] != '{' {
		var doc map[string]any
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing manifest YAML: %w", err)
		}
		var err error
		jsonData, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting manifest to JSON: %w", err)
		}
	}

	var m Manifest
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func normalize(m *Manifest) {
	if m.Kind == "" {
		m.Kind = KindAgent
	}
	if m.Spec.LLM == nil {
		m.Spec.LLM = &LLMConfig{}
	}
	llm := m.Spec.LLM
	if llm.Provider == "" {
		llm.Provider = DefaultProvider
	}
	if llm.Model == "" {
		llm.Model = DefaultModel
	}
	if llm.Temperature == 0 {
		llm.Temperature = DefaultTemperature
	}
	if llm.MaxTokens == 0 {
		llm.MaxTokens = DefaultMaxTokens
	}

	for i := range m.Spec.Tools {
		t := &m.Spec.Tools[i]
		if t.Type == ToolAPI && t.Method == "" {
			t.Method = "POST"
		}
	}

	if mem := m.Spec.Memory; mem != nil {
		if mem.Type == MemoryBuffer && mem.WindowSize == 0 {
			mem.WindowSize = DefaultWindowSize
		}
		if mem.Type == MemorySummary && mem.MaxTokenLimit == 0 {
			mem.MaxTokenLimit = DefaultMaxTokenLimit
		}
		if mem.Type.IsPersistent() && mem.Persistence != nil {
			if mem.Persistence.PoolSize == 0 {
				mem.Persistence.PoolSize = DefaultPoolSize
			}
			if mem.Persistence.TimeoutSeconds == 0 {
				mem.Persistence.TimeoutSeconds = DefaultTimeoutSeconds
			}
		}
	}

	if s := m.Spec.Streaming; s != nil {
		if s.SSE != nil && s.SSE.Enabled && s.SSE.Endpoint == "" {
			s.SSE.Endpoint = DefaultSSEEndpoint
		}
		if s.WebSocket != nil && s.WebSocket.Enabled && s.WebSocket.Endpoint == "" {
			s.WebSocket.Endpoint = DefaultWSEndpoint
		}
		if s.A2A != nil && s.A2A.Enabled && s.A2A.Endpoint == "" {
			s.A2A.Endpoint = DefaultA2AEndpoint
		}
	}
}

func validate(m *Manifest) error {
	verr := &ValidationError{}

	if m.Kind != KindAgent {
		verr.add("kind", "unsupported kind %q (only Agent manifests can be exported)", m.Kind)
	}
	if m.Metadata.Name == "" {
		verr.add("metadata.name", "name is required")
	}
	if m.Spec.Role == "" {
		verr.add("spec.role", "role is required")
	}

	seen := map[string]string{} // normalized ident -> original name
	for i := range m.Spec.Tools {
		t := &m.Spec.Tools[i]
		path := fmt.Sprintf("spec.tools[%d]", i)

		if t.Name == "" {
			verr.add(path+".name", "name is required")
			continue
		}
		ident := t.Ident()
		if ident == "" {
			verr.add(path+".name", "name %q does not normalize to a valid identifier", t.Name)
		} else if prev, ok := seen[ident]; ok {
			verr.add(path+".name", "name %q collides with tool %q (both normalize to %q)", t.Name, prev, ident)
		} else {
			seen[ident] = t.Name
		}

		switch t.Type {
		case ToolFunction:
		case ToolAPI:
			if t.Endpoint == "" {
				verr.add(path+".endpoint", "api tool %q requires an endpoint", t.Name)
			}
		case ToolMCP:
			if t.ServerCommand == "" {
				verr.add(path+".server_command", "mcp tool %q requires a server_command", t.Name)
			}
		default:
			verr.add(path+".type", "unknown tool type %q (want function, api or mcp)", t.Type)
		}

		if len(t.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(t.InputSchema)); err != nil {
				verr.add(path+".input_schema", "invalid JSON Schema: %v", err)
			}
		}
	}

	if mem := m.Spec.Memory; mem != nil {
		switch mem.Type {
		case MemoryBuffer, MemorySummary, MemoryEntity:
		case MemoryRedis, MemoryPostgres:
			if mem.Persistence == nil || mem.Persistence.Connection == "" {
				verr.add("spec.memory.persistence.connection",
					"%s memory requires a non-empty persistence connection", mem.Type)
			}
		default:
			verr.add("spec.memory.type",
				"unknown memory type %q (want buffer, summary, entity, redis or postgres)", mem.Type)
		}
	}

	if s := m.Spec.Streaming; s != nil {
		if s.A2A != nil && s.A2A.Enabled && s.A2A.MeshURL == "" {
			verr.add("spec.streaming.a2a.mesh_url", "a2a transport requires a mesh_url")
		}
	}

	return verr.orNil()
}
