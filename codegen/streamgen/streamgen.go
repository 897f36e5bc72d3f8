// Package streamgen generates the streaming module of an exported agent.
//
// One shared event-producing core feeds every enabled transport adapter:
// an SSE push stream with idle heartbeats, a duplex WebSocket with
// cooperative cancellation and bounded per-connection queues, and an A2A
// relay that posts the accumulated event sequence to a peer mesh endpoint.
// All adapters consume the same ordered event vocabulary.
package streamgen

import (
	"context"
	"fmt"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// Stage emits streaming.py when at least one transport is enabled.
type Stage struct{}

func (s *Stage) Name() string { return "generate-streaming" }

func (s *Stage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	transports, dropped := Resolve(ec.Manifest, ec.Opts.Transports)
	for _, name := range dropped {
		ec.AddWarning(fmt.Sprintf("ignoring unknown transport %q", name))
	}
	if len(transports) == 0 {
		return nil
	}
	ec.Transports = transports

	content, err := Generate(ec.Manifest, transports)
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "streaming.py",
		Content: content,
		Type:    codegen.FileSource,
	})
}

// Resolve returns the effective transport set: the options override when
// present, otherwise the manifest's enabled transports. Override names
// outside the known vocabulary are returned in dropped so callers can
// surface them.
func Resolve(m *manifest.Manifest, override []string) (transports, dropped []string) {
	if override != nil {
		out := make([]string, 0, len(override))
		for _, t := range override {
			switch t {
			case "sse", "websocket", "a2a":
				out = append(out, t)
			default:
				dropped = append(dropped, t)
			}
		}
		return out, dropped
	}
	return m.EnabledTransports(), nil
}

type templateData struct {
	AgentName string
	Model     string

	SSE       bool
	WebSocket bool
	A2A       bool

	SSEEndpoint string
	WSEndpoint  string
	A2AEndpoint string
	MeshURL     string
	TargetAgent string
}

// Generate renders the streaming module for the enabled transports.
func Generate(m *manifest.Manifest, transports []string) (string, error) {
	data := templateData{
		AgentName:   m.Metadata.Name,
		Model:       m.Spec.LLM.Model,
		SSEEndpoint: manifest.DefaultSSEEndpoint,
		WSEndpoint:  manifest.DefaultWSEndpoint,
		A2AEndpoint: manifest.DefaultA2AEndpoint,
	}
	for _, t := range transports {
		switch t {
		case "sse":
			data.SSE = true
		case "websocket":
			data.WebSocket = true
		case "a2a":
			data.A2A = true
		default:
			return "", fmt.Errorf("unknown transport %q", t)
		}
	}
	if s := m.Spec.Streaming; s != nil {
		if s.SSE != nil && s.SSE.Endpoint != "" {
			data.SSEEndpoint = s.SSE.Endpoint
		}
		if s.WebSocket != nil && s.WebSocket.Endpoint != "" {
			data.WSEndpoint = s.WebSocket.Endpoint
		}
		if s.A2A != nil {
			if s.A2A.Endpoint != "" {
				data.A2AEndpoint = s.A2A.Endpoint
			}
			data.MeshURL = s.A2A.MeshURL
			data.TargetAgent = s.A2A.TargetAgent
		}
	}
	return codegen.Render("streaming.py.tmpl", data)
}
