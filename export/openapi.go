package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// openapiStage emits an OpenAPI 3.1 description of the generated HTTP
// surface. The WebSocket transport has no OpenAPI representation and is
// documented in the README instead.
type openapiStage struct{}

func (s *openapiStage) Name() string { return "generate-openapi" }

func (s *openapiStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	if !ec.Opts.IncludeOpenAPI || !ec.Opts.IncludeAPI {
		return nil
	}
	data := buildEntrypointData(ec)

	doc := openapiDoc{
		OpenAPI: "3.1.0",
		Info: openapiInfo{
			Title:       data.AgentName,
			Description: data.Description,
			Version:     "1.0.0",
		},
		Paths: map[string]map[string]openapiOperation{},
		Components: openapiComponents{
			Schemas: map[string]json.RawMessage{
				"InvokeRequest": json.RawMessage(`{
  "type": "object",
  "required": ["prompt"],
  "properties": {
    "prompt": {"type": "string"},
    "session_id": {"type": "string", "default": "default"}
  }
}`),
				"InvokeResponse": json.RawMessage(`{
  "type": "object",
  "properties": {
    "response": {"type": "string"},
    "session_id": {"type": "string"},
    "usage": {"type": "object"}
  }
}`),
			},
		},
	}

	requestBody := &openapiBody{
		Required: true,
		Content: map[string]openapiMedia{
			"application/json": {Schema: ref("InvokeRequest")},
		},
	}

	doc.Paths["/invoke"] = map[string]openapiOperation{
		"post": {
			Summary:     "Run one agent turn",
			OperationID: "invoke",
			RequestBody: requestBody,
			Responses: map[string]openapiResponse{
				"200": jsonResponse("Structured agent result", ref("InvokeResponse")),
				"422": {Description: "Request failed validation"},
			},
		},
	}
	doc.Paths["/health"] = map[string]openapiOperation{
		"get": {
			Summary:     "Service liveness and backend health",
			OperationID: "health",
			Responses: map[string]openapiResponse{
				"200": jsonResponse("Health report", json.RawMessage(`{"type": "object"}`)),
			},
		},
	}
	if data.HasTools {
		doc.Paths["/tools"] = map[string]openapiOperation{
			"get": {
				Summary:     "List registered tools",
				OperationID: "listTools",
				Responses: map[string]openapiResponse{
					"200": jsonResponse("Tool registry", json.RawMessage(`{"type": "object"}`)),
				},
			},
		}
	}
	if data.SSE {
		doc.Paths[data.SSEEndpoint] = map[string]openapiOperation{
			"post": {
				Summary:     "Stream one generation as server-sent events",
				OperationID: "chatStream",
				RequestBody: requestBody,
				Responses: map[string]openapiResponse{
					"200": {
						Description: "SSE event stream; emits comment heartbeats when idle",
						Content: map[string]openapiMedia{
							"text/event-stream": {Schema: json.RawMessage(`{"type": "string"}`)},
						},
					},
				},
			},
		}
	}
	if data.A2A {
		doc.Paths[data.A2AEndpoint] = map[string]openapiOperation{
			"post": {
				Summary:     "Run one generation and return the accumulated relay payload",
				OperationID: "a2aRelay",
				RequestBody: requestBody,
				Responses: map[string]openapiResponse{
					"200": jsonResponse("Relay payload with full event sequence", json.RawMessage(`{"type": "object"}`)),
				},
			},
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling openapi document: %w", err)
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "openapi.json",
		Content: string(out) + "\n",
		Type:    codegen.FileDoc,
	})
}

type openapiDoc struct {
	OpenAPI    string                                 `json:"openapi"`
	Info       openapiInfo                            `json:"info"`
	Paths      map[string]map[string]openapiOperation `json:"paths"`
	Components openapiComponents                      `json:"components"`
}

type openapiInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type openapiComponents struct {
	Schemas map[string]json.RawMessage `json:"schemas"`
}

type openapiOperation struct {
	Summary     string                     `json:"summary"`
	OperationID string                     `json:"operationId"`
	RequestBody *openapiBody               `json:"requestBody,omitempty"`
	Responses   map[string]openapiResponse `json:"responses"`
}

type openapiBody struct {
	Required bool                    `json:"required"`
	Content  map[string]openapiMedia `json:"content"`
}

type openapiMedia struct {
	Schema json.RawMessage `json:"schema"`
}

type openapiResponse struct {
	Description string                  `json:"description"`
	Content     map[string]openapiMedia `json:"content,omitempty"`
}

func ref(name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"$ref": "#/components/schemas/%s"}`, name))
}

func jsonResponse(description string, schema json.RawMessage) openapiResponse {
	return openapiResponse{
		Description: description,
		Content:     map[string]openapiMedia{"application/json": {Schema: schema}},
	}
}
