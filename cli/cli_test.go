package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: cli-agent
spec:
  role: tester
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

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.ossa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand_ValidManifest(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", writeManifest(t, validManifest)})
	assert.NoError(t, rootCmd.Execute())
}

func TestValidateCommand_InvalidManifest(t *testing.T) {
	path := writeManifest(t, `
apiVersion: ossa/v1
kind: Agent
metadata:
  name: broken
spec:
  role: tester
  tools:
    - name: fetch
      type: api
`)
	rootCmd.SetArgs([]string{"validate", path})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation issue")
}

func TestExportCommand_WritesProject(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	rootCmd.SetArgs([]string{"export", writeManifest(t, validManifest), "-o", outDir})
	require.NoError(t, rootCmd.Execute())

	for _, rel := range []string{"agent.py", "tools.py", "requirements.txt", "tests/test_tools.py"} {
		_, err := os.Stat(filepath.Join(outDir, rel))
		assert.NoError(t, err, rel)
	}
}

func TestExportCommand_MissingManifest(t *testing.T) {
	rootCmd.SetArgs([]string{"export", filepath.Join(t.TempDir(), "nope.yaml"), "-o", t.TempDir()})
	assert.Error(t, rootCmd.Execute())
}
