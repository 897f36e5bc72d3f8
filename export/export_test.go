package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

const fullManifest = `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: support-agent
  version: "1.2.0"
  description: Customer support agent with calculator and lookup tools.
spec:
  role: You are a helpful customer support agent.
  llm:
    provider: openai
    model: gpt-4o
    temperature: 0.3
    maxTokens: 1500
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
    - name: lookup order
      type: api
      endpoint: https://api.example.com/orders
      method: GET
      input_schema:
        type: object
        required: [order_id]
        properties:
          order_id: {type: string}
  memory:
    type: redis
    persistence:
      connection: redis://localhost:6379/0
      ttl_seconds: 86400
  streaming:
    sse:
      enabled: true
    websocket:
      enabled: true
    a2a:
      enabled: true
      mesh_url: https://mesh.internal/relay
`

func allOptions() pipeline.Options {
	return pipeline.Options{
		PythonVersion:  "3.11",
		IncludeAPI:     true,
		IncludeOpenAPI: true,
		IncludeDocker:  true,
		IncludeTests:   true,
	}
}

func loadManifest(t *testing.T, raw string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load([]byte(raw))
	require.NoError(t, err)
	return m
}

func paths(result *Result) []string {
	files := result.Files.Sorted()
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func fileContent(t *testing.T, result *Result, path string) string {
	t.Helper()
	for _, f := range result.Files.Files() {
		if f.Path == path {
			return f.Content
		}
	}
	t.Fatalf("no generated file at %s", path)
	return ""
}

func TestExport_FullProjectLayout(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	got := paths(result)
	for _, want := range []string{
		"Dockerfile",
		"README.md",
		"agent.manifest.json",
		"agent.py",
		"docker-compose.yml",
		"memory.py",
		"openapi.json",
		"pytest.ini",
		"requirements.txt",
		"streaming.py",
		"tests/conftest.py",
		"tests/fixtures/scenarios.json",
		"tests/test_integration.py",
		"tests/test_load.py",
		"tests/test_memory.py",
		"tests/test_security.py",
		"tests/test_tools.py",
		"tools.py",
	} {
		assert.Contains(t, got, want)
	}

	meta := result.Metadata
	assert.NotEmpty(t, meta.ExportID)
	assert.Equal(t, "support-agent", meta.AgentName)
	assert.Equal(t, "langchain", meta.Framework)
	assert.Equal(t, result.Files.Len(), meta.FileCount)
	assert.Equal(t, 2, meta.ToolCount)
	assert.Equal(t, "redis", meta.MemoryBackend)
	assert.Equal(t, []string{"sse", "websocket", "a2a"}, meta.Transports)
}

func TestExport_FileContentIsDeterministic(t *testing.T) {
	m := loadManifest(t, fullManifest)
	opts := allOptions()

	first, err := Export(context.Background(), m, opts, nil)
	require.NoError(t, err)
	second, err := Export(context.Background(), m, opts, nil)
	require.NoError(t, err)

	firstFiles := first.Files.Sorted()
	secondFiles := second.Files.Sorted()
	require.Equal(t, len(firstFiles), len(secondFiles))
	for i := range firstFiles {
		assert.Equal(t, firstFiles[i].Path, secondFiles[i].Path)
		assert.Equal(t, firstFiles[i].Content, secondFiles[i].Content,
			"content of %s differs between runs", firstFiles[i].Path)
	}

	// Run identity lives in metadata, never in file content.
	assert.NotEqual(t, first.Metadata.ExportID, second.Metadata.ExportID)
}

func TestExport_EntrypointWiresEverything(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	agent := fileContent(t, result, "agent.py")
	assert.Contains(t, agent, `AGENT_NAME = "support-agent"`)
	assert.Contains(t, agent, `MODEL_NAME = "gpt-4o"`)
	assert.Contains(t, agent, "TEMPERATURE = 0.3")
	assert.Contains(t, agent, "MAX_TOKENS = 1500")
	assert.Contains(t, agent, "import tools")
	assert.Contains(t, agent, "import memory")
	assert.Contains(t, agent, "import streaming")
	assert.Contains(t, agent, `@app.post("/invoke")`)
	assert.Contains(t, agent, `@app.get("/health")`)
	assert.Contains(t, agent, `@app.post("/chat/stream")`)
	assert.Contains(t, agent, `@app.websocket("/chat/ws")`)
	assert.Contains(t, agent, `@app.post("/a2a")`)
}

func TestExport_RequirementsFollowSelections(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	reqs := fileContent(t, result, "requirements.txt")
	assert.Contains(t, reqs, "langchain")
	assert.Contains(t, reqs, "fastapi")
	assert.Contains(t, reqs, "redis")
	assert.Contains(t, reqs, "httpx")
	assert.Contains(t, reqs, "respx")
	assert.NotContains(t, reqs, "asyncpg")
	assert.NotContains(t, reqs, "langchain-anthropic")
}

func TestExport_ComposeIncludesBackendService(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	compose := fileContent(t, result, "docker-compose.yml")
	assert.Contains(t, compose, "redis:7-alpine")
	assert.Contains(t, compose, "service_healthy")
	assert.NotContains(t, compose, "postgres")
}

func TestExport_ManifestEchoRoundTrips(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	echo := fileContent(t, result, "agent.manifest.json")
	reloaded, err := manifest.Load([]byte(echo))
	require.NoError(t, err)
	assert.Equal(t, m.Metadata.Name, reloaded.Metadata.Name)
	assert.Len(t, reloaded.Spec.Tools, 2)
}

func TestExport_OpenAPIDocumentIsValidJSON(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(fileContent(t, result, "openapi.json")), &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])

	pathsObj := doc["paths"].(map[string]any)
	assert.Contains(t, pathsObj, "/invoke")
	assert.Contains(t, pathsObj, "/health")
	assert.Contains(t, pathsObj, "/chat/stream")
	assert.Contains(t, pathsObj, "/a2a")
	// WebSocket endpoints have no OpenAPI representation.
	assert.NotContains(t, pathsObj, "/chat/ws")
}

func TestExport_OptionsGateArtifacts(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, pipeline.Options{IncludeAPI: true}, nil)
	require.NoError(t, err)

	got := paths(result)
	assert.NotContains(t, got, "Dockerfile")
	assert.NotContains(t, got, "docker-compose.yml")
	assert.NotContains(t, got, "openapi.json")
	assert.NotContains(t, got, "tests/test_tools.py")
	assert.Contains(t, got, "agent.py")
	assert.Equal(t, 0, result.Files.CountByType()[codegen.FileTest])
}

func TestExport_FailureYieldsNoResult(t *testing.T) {
	m := loadManifest(t, fullManifest)

	opts := allOptions()
	opts.MemoryBackend = "blockchain"

	result, err := Export(context.Background(), m, opts, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "stage generate-memory")
}

func TestExport_CancelledContext(t *testing.T) {
	m := loadManifest(t, fullManifest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Export(ctx, m, allOptions(), nil)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestExportRaw_InvalidManifest(t *testing.T) {
	_, err := ExportRaw(context.Background(), []byte(`{"kind": "Agent"}`), allOptions(), nil)
	require.Error(t, err)

	var verr *manifest.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestResult_WriteMaterializesTree(t *testing.T) {
	m := loadManifest(t, fullManifest)

	result, err := Export(context.Background(), m, allOptions(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, result.Write(dir))

	data, err := os.ReadFile(filepath.Join(dir, "agent.py"))
	require.NoError(t, err)
	assert.Equal(t, fileContent(t, result, "agent.py"), string(data))

	_, err = os.Stat(filepath.Join(dir, "tests", "fixtures", "scenarios.json"))
	assert.NoError(t, err)
}

func TestResult_WriteRejectsEscapingPaths(t *testing.T) {
	result := &Result{Files: codegen.NewFileSet()}
	require.NoError(t, result.Files.Add("test", codegen.File{
		Path:    "../outside.py",
		Content: "oops",
	}))

	err := result.Write(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes output directory")
}
