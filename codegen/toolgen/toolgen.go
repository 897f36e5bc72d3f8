// Package toolgen generates the typed tool module of an exported agent.
//
// Each manifest tool becomes one self-contained callable plus a pydantic
// input model. Function tools are synchronous; api and mcp tools are
// asynchronous so network and subprocess calls never block the agent's
// event loop. Every callable returns a structured result and classifies
// failures as timeout, protocol error, or unexpected exception — nothing
// is raised past the tool boundary.
package toolgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// Stage emits tools.py when the manifest declares at least one tool.
type Stage struct{}

func (s *Stage) Name() string { return "generate-tools" }

func (s *Stage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	if len(ec.Manifest.Spec.Tools) == 0 {
		return nil
	}
	content, err := Generate(ec.Manifest)
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "tools.py",
		Content: content,
		Type:    codegen.FileSource,
	})
}

// toolData is the per-tool template payload.
type toolData struct {
	Name          string // manifest name
	Ident         string
	ClassName     string
	Description   string
	Type          string
	Async         bool
	Endpoint      string
	Method        string
	ServerCommand string
	Fields        []codegen.Field
	Body          string // function tools only: the result expression
	Stub          bool   // function tools with no recognized body
}

type fileData struct {
	AgentName string
	Tools     []toolData
	HasAPI    bool
	HasMCP    bool
}

// Generate renders the complete tools module for the manifest.
func Generate(m *manifest.Manifest) (string, error) {
	data := fileData{AgentName: m.Metadata.Name}
	for i := range m.Spec.Tools {
		t := &m.Spec.Tools[i]
		fields, err := codegen.SchemaToFields(t.InputSchema)
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", t.Name, err)
		}
		td := toolData{
			Name:          t.Name,
			Ident:         t.Ident(),
			ClassName:     t.ClassName(),
			Description:   t.Description,
			Type:          string(t.Type),
			Async:         t.IsAsync(),
			Endpoint:      t.Endpoint,
			Method:        t.Method,
			ServerCommand: t.ServerCommand,
			Fields:        fields,
		}
		switch t.Type {
		case manifest.ToolAPI:
			data.HasAPI = true
		case manifest.ToolMCP:
			data.HasMCP = true
		case manifest.ToolFunction:
			td.Body, td.Stub = functionBody(t, fields)
		}
		data.Tools = append(data.Tools, td)
	}
	return codegen.Render("tools.py.tmpl", data)
}

// arithmetic maps recognizable operation hints to python operators.
var arithmetic = []struct {
	hints []string
	op    string
}{
	{[]string{"add", "sum", "plus"}, "+"},
	{[]string{"subtract", "minus", "difference"}, "-"},
	{[]string{"multiply", "product", "times"}, "*"},
	{[]string{"divide", "quotient"}, "/"},
}

// functionBody derives a deterministic body for a function tool. Tools
// whose name or description names an arithmetic operation over exactly two
// numeric parameters get the real operation; everything else gets an
// explicit not-implemented stub that still returns a structured result.
func functionBody(t *manifest.ToolSpec, fields []codegen.Field) (string, bool) {
	numeric := make([]string, 0, 2)
	for _, f := range fields {
		if f.Type == "int" || f.Type == "float" {
			numeric = append(numeric, f.Name)
		}
	}
	if len(fields) == 2 && len(numeric) == 2 {
		hint := strings.ToLower(t.Name + " " + t.Description)
		for _, a := range arithmetic {
			for _, h := range a.hints {
				if strings.Contains(hint, h) {
					return fmt.Sprintf("params.%s %s params.%s", numeric[0], a.op, numeric[1]), false
				}
			}
		}
	}
	return "", true
}
