// Package testgen derives a pytest suite from the same manifest the other
// generators consume, so the tests and the implementation can never drift
// apart: tool tests come from the tool list, memory tests from the
// resolved backend, streaming and cost tests from the transport set.
package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/codegen/memgen"
	"github.com/blueflyio/openstandardagents/codegen/streamgen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// Stage emits the test tree when the export options ask for it.
type Stage struct{}

func (s *Stage) Name() string { return "generate-tests" }

func (s *Stage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	if !ec.Opts.IncludeTests {
		return nil
	}
	files, err := Generate(ec.Manifest, ec.Opts)
	if err != nil {
		return err
	}
	return ec.Files.AddAll(s.Name(), files)
}

// ToolCase carries the derived test inputs for one tool.
type ToolCase struct {
	Name      string
	Ident     string
	ClassName string
	Type      string
	Async     bool
	Endpoint  string
	Method    string

	HappyArgs    string // python kwargs for a valid invocation
	Expected     string // python literal for the asserted result, "" when none
	BadArgs      string // python kwargs violating the schema
	StringField  string // first free-text field, "" when none
	SecurityArgs string // happy kwargs with the string field bound to `payload`
	HasSchema    bool
	Stub         bool // function tools with no derivable body
}

type suiteData struct {
	AgentName     string
	Tools         []ToolCase
	HasAPI        bool
	HasMCP        bool
	HasFunction   bool
	MemoryBackend string
	Persistent    bool
	Streaming     bool
	WebSocket     bool
	API           bool
	Model         string
}

// Generate renders the full test tree for the manifest and options.
func Generate(m *manifest.Manifest, opts pipeline.Options) ([]codegen.File, error) {
	spec, err := memgen.Resolve(m, opts.MemoryBackend)
	if err != nil {
		return nil, err
	}
	transports, _ := streamgen.Resolve(m, opts.Transports)

	data := suiteData{
		AgentName: m.Metadata.Name,
		Model:     m.Spec.LLM.Model,
		Streaming: len(transports) > 0,
		API:       opts.IncludeAPI,
	}
	for _, t := range transports {
		if t == "websocket" {
			data.WebSocket = true
		}
	}
	if spec != nil {
		data.MemoryBackend = string(spec.Type)
		data.Persistent = spec.Type.IsPersistent()
	}

	for i := range m.Spec.Tools {
		tc, err := buildCase(&m.Spec.Tools[i])
		if err != nil {
			return nil, err
		}
		switch tc.Type {
		case "api":
			data.HasAPI = true
		case "mcp":
			data.HasMCP = true
		default:
			data.HasFunction = true
		}
		data.Tools = append(data.Tools, tc)
	}

	var files []codegen.File
	add := func(path, tmpl string, ft codegen.FileType) error {
		content, err := codegen.Render(tmpl, data)
		if err != nil {
			return err
		}
		files = append(files, codegen.File{Path: path, Content: content, Type: ft})
		return nil
	}

	files = append(files, codegen.File{
		Path:    "pytest.ini",
		Content: "[pytest]\ntestpaths = tests\nasyncio_mode = auto\n",
		Type:    codegen.FileConfig,
	})
	if err := add("tests/conftest.py", "test_conftest.py.tmpl", codegen.FileTest); err != nil {
		return nil, err
	}
	if len(data.Tools) > 0 {
		if err := add("tests/test_tools.py", "test_tools.py.tmpl", codegen.FileTest); err != nil {
			return nil, err
		}
	}
	if data.MemoryBackend != "" {
		if err := add("tests/test_memory.py", "test_memory.py.tmpl", codegen.FileTest); err != nil {
			return nil, err
		}
	}
	if err := add("tests/test_integration.py", "test_integration.py.tmpl", codegen.FileTest); err != nil {
		return nil, err
	}
	if err := add("tests/test_load.py", "test_load.py.tmpl", codegen.FileTest); err != nil {
		return nil, err
	}
	if len(data.Tools) > 0 {
		if err := add("tests/test_security.py", "test_security.py.tmpl", codegen.FileTest); err != nil {
			return nil, err
		}
	}

	fixtures, err := scenarioFixture(m, data)
	if err != nil {
		return nil, err
	}
	files = append(files, codegen.File{
		Path:    "tests/fixtures/scenarios.json",
		Content: fixtures,
		Type:    codegen.FileFixture,
	})
	return files, nil
}

// buildCase derives valid and invalid invocations for one tool from its
// input schema.
func buildCase(t *manifest.ToolSpec) (ToolCase, error) {
	fields, err := codegen.SchemaToFields(t.InputSchema)
	if err != nil {
		return ToolCase{}, fmt.Errorf("tool %s: %w", t.Name, err)
	}

	tc := ToolCase{
		Name:      t.Name,
		Ident:     t.Ident(),
		ClassName: t.ClassName(),
		Type:      string(t.Type),
		Async:     t.IsAsync(),
		Endpoint:  t.Endpoint,
		Method:    t.Method,
		HasSchema: len(fields) > 0,
	}

	var happy []string
	samples := make([]string, 0, len(fields))
	for _, f := range fields {
		v := sampleValue(f, len(samples))
		samples = append(samples, v)
		happy = append(happy, f.Name+"="+v)
	}
	tc.HappyArgs = strings.Join(happy, ", ")

	// A typed field fed a wrong-typed value must be rejected before the
	// tool body runs.
	for _, f := range fields {
		if bad := badValue(f); bad != "" {
			tc.BadArgs = f.Name + "=" + bad
			break
		}
	}
	for _, f := range fields {
		if f.Type == "str" || f.Type == "Optional[str]" {
			tc.StringField = f.Name
			break
		}
	}
	if tc.StringField != "" {
		var sec []string
		for i, f := range fields {
			if f.Name == tc.StringField {
				sec = append(sec, f.Name+"=payload")
			} else {
				sec = append(sec, f.Name+"="+samples[i])
			}
		}
		tc.SecurityArgs = strings.Join(sec, ", ")
	}

	if t.Type == manifest.ToolFunction {
		tc.Expected = expectedResult(t, fields)
		tc.Stub = tc.Expected == ""
	}
	return tc, nil
}

// sampleValue picks a deterministic valid python literal for a field.
// Numeric fields count upward from 2 so arithmetic tools get 2 and 3.
func sampleValue(f codegen.Field, position int) string {
	base := strings.TrimPrefix(strings.TrimSuffix(f.Type, "]"), "Optional[")
	if strings.HasPrefix(base, "Literal[") {
		options := strings.TrimSuffix(strings.TrimPrefix(base, "Literal["), "]")
		if idx := strings.Index(options, ","); idx > 0 {
			return strings.TrimSpace(options[:idx])
		}
		return options
	}
	switch base {
	case "int":
		return fmt.Sprintf("%d", 2+position)
	case "float":
		return fmt.Sprintf("%d.0", 2+position)
	case "bool":
		return "True"
	default:
		if strings.HasPrefix(base, "List[") {
			return "[]"
		}
		if strings.HasPrefix(base, "Dict[") {
			return "{}"
		}
		return `"example"`
	}
}

// badValue returns a wrong-typed literal for a field, or "" when pydantic
// would coerce anything we could pass.
func badValue(f codegen.Field) string {
	base := strings.TrimPrefix(strings.TrimSuffix(f.Type, "]"), "Optional[")
	switch {
	case base == "int" || base == "float":
		return `"not-a-number"`
	case base == "bool":
		return `"not-a-bool"`
	case strings.HasPrefix(base, "List["):
		return "3"
	case strings.HasPrefix(base, "Dict["):
		return "3"
	case strings.HasPrefix(base, "Literal["):
		return `"definitely-not-a-member"`
	default:
		return ""
	}
}

// expectedResult mirrors toolgen's arithmetic recognizer so the happy-path
// assertion checks the actual value, e.g. add(2, 3) == 5.
func expectedResult(t *manifest.ToolSpec, fields []codegen.Field) string {
	numeric := make([]codegen.Field, 0, 2)
	for _, f := range fields {
		if f.Type == "int" || f.Type == "float" {
			numeric = append(numeric, f)
		}
	}
	if len(fields) != 2 || len(numeric) != 2 {
		return ""
	}
	a, b := 2.0, 3.0
	hint := strings.ToLower(t.Name + " " + t.Description)
	var result float64
	switch {
	case containsAny(hint, "add", "sum", "plus"):
		result = a + b
	case containsAny(hint, "subtract", "minus", "difference"):
		result = a - b
	case containsAny(hint, "multiply", "product", "times"):
		result = a * b
	case containsAny(hint, "divide", "quotient"):
		result = a / b
	default:
		return ""
	}
	if numeric[0].Type == "int" && numeric[1].Type == "int" && result == float64(int64(result)) {
		return fmt.Sprintf("%d", int64(result))
	}
	return fmt.Sprintf("%g", result)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// scenarioFixture builds the shared scenario script consumed by the
// integration and load tests.
func scenarioFixture(m *manifest.Manifest, data suiteData) (string, error) {
	type toolFixture struct {
		Name   string         `json:"name"`
		Type   string         `json:"type"`
		Input  map[string]any `json:"input"`
		Output map[string]any `json:"output"`
	}
	type scenario struct {
		Name    string   `json:"name"`
		Prompts []string `json:"prompts"`
	}

	fixture := struct {
		Agent     string        `json:"agent"`
		Prompts   []string      `json:"sample_prompts"`
		Tools     []toolFixture `json:"tools"`
		Scenarios []scenario    `json:"scenarios"`
	}{
		Agent: m.Metadata.Name,
		Prompts: []string{
			"Hello, what can you do?",
			"Walk me through your available tools.",
			"Summarize our conversation so far.",
		},
		Scenarios: []scenario{
			{Name: "smoke", Prompts: []string{"Hello, what can you do?"}},
			{Name: "multi_turn", Prompts: []string{
				"Remember that my name is Ada.",
				"What is my name?",
			}},
		},
	}
	for _, tc := range data.Tools {
		fixture.Tools = append(fixture.Tools, toolFixture{
			Name:   tc.Name,
			Type:   tc.Type,
			Input:  map[string]any{"kwargs": tc.HappyArgs},
			Output: map[string]any{"status": "success", "tool": tc.Name},
		})
	}

	out, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling scenario fixture: %w", err)
	}
	return string(out) + "\n", nil
}
