package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blueflyio/openstandardagents/manifest"
)

// Field describes one typed parameter of a tool input model, translated
// from a JSON-Schema property into pydantic terms.
type Field struct {
	Name        string // normalized python identifier
	Type        string // python annotation, Optional-wrapped when not required
	Required    bool
	Default     string // python literal, empty when absent
	Description string
}

// HasDefault reports whether the field carries a default value.
func (f Field) HasDefault() bool { return f.Default != "" }

// SchemaToFields translates a JSON-Schema-like input schema into an
// ordered field list. Property order follows the schema document so the
// emitted model reads like the manifest. Defaults are preserved verbatim
// as python literals.
func SchemaToFields(raw json.RawMessage) ([]Field, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parsing input schema: %w", err)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, r := range schema.Required {
		required[r] = true
	}

	order, err := propertyOrder(raw)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(order))
	for _, name := range order {
		propRaw := schema.Properties[name]
		var prop struct {
			Type        string            `json:"type"`
			Description string            `json:"description"`
			Enum        []json.RawMessage `json:"enum"`
			Items       *struct {
				Type string `json:"type"`
			} `json:"items"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(propRaw, &prop); err != nil {
			return nil, fmt.Errorf("parsing property %q: %w", name, err)
		}

		pyType := pyType(prop.Type, prop.Items)
		if len(prop.Enum) > 0 {
			lits := make([]string, len(prop.Enum))
			for i, e := range prop.Enum {
				lits[i] = PyLiteral(e)
			}
			pyType = "Literal[" + strings.Join(lits, ", ") + "]"
		}

		f := Field{
			Name:        manifest.PyIdent(name),
			Required:    required[name],
			Description: prop.Description,
		}
		if len(prop.Default) > 0 {
			f.Default = PyLiteral(prop.Default)
		}
		if !f.Required && !f.HasDefault() {
			f.Type = "Optional[" + pyType + "]"
			f.Default = "None"
		} else {
			f.Type = pyType
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// propertyOrder extracts property names in document order so generation is
// stable and faithful to the manifest author's layout.
func propertyOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	// Walk tokens until the "properties" key at depth 1.
	if _, err := dec.Token(); err != nil { // opening {
		return nil, fmt.Errorf("parsing input schema: %w", err)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing input schema: %w", err)
		}
		key, _ := keyTok.(string)
		if key != "properties" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("parsing input schema: %w", err)
			}
			continue
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing input schema: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, nil
		}
		var order []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("parsing input schema: %w", err)
			}
			name, _ := nameTok.(string)
			order = append(order, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("parsing property %q: %w", name, err)
			}
		}
		return order, nil
	}
	return nil, nil
}

func pyType(schemaType string, items *struct {
	Type string `json:"type"`
}) string {
	switch schemaType {
	case "integer":
		return "int"
	case "number":
		return "float"
	case "boolean":
		return "bool"
	case "array":
		inner := "Any"
		if items != nil && items.Type != "" {
			inner = pyType(items.Type, nil)
		}
		return "List[" + inner + "]"
	case "object":
		return "Dict[str, Any]"
	case "string", "":
		return "str"
	default:
		return "Any"
	}
}

// PyLiteral renders a JSON value as a python literal, preserving the
// manifest's value verbatim.
func PyLiteral(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "None"
	}
	return pyValue(v)
}

func pyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return PyString(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = pyValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		// Deterministic rendering for nested defaults.
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = PyString(k) + ": " + pyValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "None"
	}
}

// PyString renders a double-quoted python string literal.
func PyString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
