package manifest

import (
	"strings"
	"unicode"
)

// pythonKeywords are reserved words that cannot be used as identifiers in
// the emitted code.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// PyIdent normalizes a tool name to a valid snake_case Python identifier.
// Two manifest names that collide after normalization are a validation
// error, detected by Load.
func PyIdent(name string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
		case unicode.IsDigit(r):
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if b.Len() > 0 && !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	ident := strings.Trim(b.String(), "_")
	if ident == "" {
		return ""
	}
	if unicode.IsDigit(rune(ident[0])) {
		ident = "_" + ident
	}
	if pythonKeywords[ident] {
		ident += "_"
	}
	return ident
}

// PyClass normalizes a name to a CamelCase Python class name.
func PyClass(name string) string {
	ident := PyIdent(name)
	if ident == "" {
		return ""
	}
	parts := strings.Split(ident, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// Ident returns the normalized Python identifier for the tool.
func (t *ToolSpec) Ident() string { return PyIdent(t.Name) }

// ClassName returns the pydantic input model class name for the tool.
func (t *ToolSpec) ClassName() string { return PyClass(t.Name) + "Input" }

// IsAsync reports whether the emitted callable must be asynchronous.
// Network and subprocess tools must not block the agent's event loop.
func (t *ToolSpec) IsAsync() bool { return t.Type == ToolAPI || t.Type == ToolMCP }
