package toolgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

func loadManifest(t *testing.T, raw string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load([]byte(raw))
	require.NoError(t, err)
	return m
}

const calculatorManifest = `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: calculator-agent
spec:
  role: calculator
  tools:
    - name: add
      type: function
      description: Add two numbers
      input_schema:
        type: object
        required: [a, b]
        properties:
          a: {type: integer}
          b: {type: integer}
`

func TestGenerate_ArithmeticFunctionTool(t *testing.T) {
	m := loadManifest(t, calculatorManifest)

	content, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, content, "class AddInput(BaseModel):")
	assert.Contains(t, content, "    a: int")
	assert.Contains(t, content, "    b: int")
	// Function tools are synchronous and the recognized operation becomes
	// a real body, not a stub.
	assert.Contains(t, content, "def add(**kwargs: Any)")
	assert.NotContains(t, content, "async def add(")
	assert.Contains(t, content, "params.a + params.b")
	assert.NotContains(t, content, "NotImplementedError")
}

func TestGenerate_UnrecognizedFunctionToolGetsStub(t *testing.T) {
	m := loadManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: stub-agent
spec:
  role: helper
  tools:
    - name: summarize document
      type: function
      input_schema:
        type: object
        required: [text]
        properties:
          text: {type: string}
`)

	content, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, content, "def summarize_document(**kwargs: Any)")
	assert.Contains(t, content, "NotImplementedError")
	// The stub still goes through validation and structured failure.
	assert.Contains(t, content, `"ValidationError"`)
}

func TestGenerate_APIToolIsAsyncWithClassifiedFailures(t *testing.T) {
	m := loadManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: api-agent
spec:
  role: caller
  tools:
    - name: lookup user
      type: api
      endpoint: https://api.example.com/users
      method: GET
`)

	content, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, content, "import httpx")
	assert.Contains(t, content, "async def lookup_user(**kwargs: Any)")
	assert.Contains(t, content, `"GET"`)
	assert.Contains(t, content, `"https://api.example.com/users"`)
	assert.Contains(t, content, `"protocol_error"`)
	assert.Contains(t, content, "status_code=response.status_code")
	assert.Contains(t, content, "httpx.TimeoutException")
}

func TestGenerate_MCPToolSpawnsServer(t *testing.T) {
	m := loadManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: mcp-agent
spec:
  role: prober
  tools:
    - name: search docs
      type: mcp
      server_command: npx docs-server --stdio
`)

	content, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, content, "async def search_docs(**kwargs: Any)")
	assert.Contains(t, content, "asyncio.create_subprocess_shell")
	assert.Contains(t, content, `"npx docs-server --stdio"`)
	assert.Contains(t, content, `"tools/call"`)
	assert.Contains(t, content, "exit_code=proc.returncode")
	// Timeout kills the server before reporting.
	assert.Contains(t, content, "proc.kill()")
}

func TestGenerate_RegistryAndDispatch(t *testing.T) {
	m := loadManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: mixed-agent
spec:
  role: helper
  tools:
    - name: add
      type: function
      description: Add two numbers
      input_schema:
        type: object
        required: [a, b]
        properties:
          a: {type: integer}
          b: {type: integer}
    - name: lookup
      type: api
      endpoint: https://api.example.com/q
`)

	content, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, content, `"add": {`)
	assert.Contains(t, content, `"lookup": {`)
	assert.Contains(t, content, `"async": False`)
	assert.Contains(t, content, `"async": True`)
	assert.Contains(t, content, "async def dispatch(tool: str, **kwargs: Any)")
	assert.Contains(t, content, `"unknown_tool"`)
}

func TestStage_SkipsWhenNoTools(t *testing.T) {
	m := loadManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: toolless-agent
spec:
  role: chatter
`)
	ec := pipeline.NewExportContext(m, pipeline.Options{}, nil)

	stage := &Stage{}
	require.NoError(t, stage.Execute(context.Background(), ec))
	assert.Equal(t, 0, ec.Files.Len())
}

func TestStage_EmitsToolsFile(t *testing.T) {
	m := loadManifest(t, calculatorManifest)
	ec := pipeline.NewExportContext(m, pipeline.Options{}, nil)

	stage := &Stage{}
	require.NoError(t, stage.Execute(context.Background(), ec))

	files := ec.Files.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "tools.py", files[0].Path)
	assert.True(t, strings.Contains(files[0].Content, "TOOL_TIMEOUT_SECONDS = 30.0"))
}
