// Package manifest defines the in-memory representation of an OSSA agent
// manifest and its load-time validation.
package manifest

import "encoding/json"

// Kind identifies the manifest kind.
type Kind string

const (
	KindAgent Kind = "Agent"
)

// ToolType enumerates the supported tool dispatch styles.
type ToolType string

const (
	ToolFunction ToolType = "function"
	ToolAPI      ToolType = "api"
	ToolMCP      ToolType = "mcp"
)

// MemoryType enumerates the supported memory backends.
type MemoryType string

const (
	MemoryBuffer   MemoryType = "buffer"
	MemorySummary  MemoryType = "summary"
	MemoryEntity   MemoryType = "entity"
	MemoryRedis    MemoryType = "redis"
	MemoryPostgres MemoryType = "postgres"
)

// IsPersistent reports whether the backend requires an external store.
func (t MemoryType) IsPersistent() bool {
	return t == MemoryRedis || t == MemoryPostgres
}

// Manifest is the root of a validated agent manifest. It is immutable once
// returned by Load; codegen components read it but never mutate it.
type Manifest struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	Spec       Spec     `json:"spec" yaml:"spec"`
}

// Metadata contains manifest identity metadata.
type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Spec contains the agent specification.
type Spec struct {
	Role      string         `json:"role" yaml:"role"`
	LLM       *LLMConfig     `json:"llm,omitempty" yaml:"llm,omitempty"`
	Tools     []ToolSpec     `json:"tools,omitempty" yaml:"tools,omitempty"`
	Memory    *MemorySpec    `json:"memory,omitempty" yaml:"memory,omitempty"`
	Streaming *StreamingSpec `json:"streaming,omitempty" yaml:"streaming,omitempty"`

	// Safety and autonomy blocks are carried through to the emitted
	// manifest copy but never interpreted by the generator.
	Safety   map[string]any `json:"safety,omitempty" yaml:"safety,omitempty"`
	Autonomy map[string]any `json:"autonomy,omitempty" yaml:"autonomy,omitempty"`
}

// LLMConfig binds the agent to a provider and model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
}

// ToolSpec declares one typed tool available to the agent.
type ToolSpec struct {
	Name        string          `json:"name" yaml:"name"`
	Type        ToolType        `json:"type" yaml:"type"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty" yaml:"input_schema,omitempty"`

	// api tools
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`

	// mcp tools
	ServerCommand string `json:"server_command,omitempty" yaml:"server_command,omitempty"`
}

// MemorySpec selects and configures a memory backend.
type MemorySpec struct {
	Type          MemoryType         `json:"type" yaml:"type"`
	WindowSize    int                `json:"window_size,omitempty" yaml:"window_size,omitempty"`
	MaxTokenLimit int                `json:"max_token_limit,omitempty" yaml:"max_token_limit,omitempty"`
	Persistence   *PersistenceConfig `json:"persistence,omitempty" yaml:"persistence,omitempty"`
}

// PersistenceConfig holds connection settings for redis/postgres backends.
type PersistenceConfig struct {
	Connection     string `json:"connection" yaml:"connection"`
	PoolSize       int    `json:"pool_size,omitempty" yaml:"pool_size,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	TTLSeconds     int    `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// StreamingSpec toggles the three live transports. All enabled transports
// share one event vocabulary in the emitted code.
type StreamingSpec struct {
	SSE       *TransportConfig `json:"sse,omitempty" yaml:"sse,omitempty"`
	WebSocket *TransportConfig `json:"websocket,omitempty" yaml:"websocket,omitempty"`
	A2A       *A2AConfig       `json:"a2a,omitempty" yaml:"a2a,omitempty"`
}

// TransportConfig is one transport toggle block.
type TransportConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// A2AConfig configures the agent-to-agent relay transport.
type A2AConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	MeshURL     string `json:"mesh_url,omitempty" yaml:"mesh_url,omitempty"`
	TargetAgent string `json:"target_agent,omitempty" yaml:"target_agent,omitempty"`
}

// HasMemory reports whether a memory backend was requested.
func (m *Manifest) HasMemory() bool {
	return m.Spec.Memory != nil
}

// EnabledTransports returns the names of enabled streaming transports in a
// fixed order: sse, websocket, a2a.
func (m *Manifest) EnabledTransports() []string {
	s := m.Spec.Streaming
	if s == nil {
		return nil
	}
	var out []string
	if s.SSE != nil && s.SSE.Enabled {
		out = append(out, "sse")
	}
	if s.WebSocket != nil && s.WebSocket.Enabled {
		out = append(out, "websocket")
	}
	if s.A2A != nil && s.A2A.Enabled {
		out = append(out, "a2a")
	}
	return out
}

// StreamingEnabled reports whether at least one transport is enabled.
func (m *Manifest) StreamingEnabled() bool {
	return len(m.EnabledTransports()) > 0
}

// ToolByName returns the tool with the given manifest name, or nil.
func (m *Manifest) ToolByName(name string) *ToolSpec {
	for i := range m.Spec.Tools {
		if m.Spec.Tools[i].Name == name {
			return &m.Spec.Tools[i]
		}
	}
	return nil
}
