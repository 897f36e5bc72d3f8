package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/export"
	"github.com/blueflyio/openstandardagents/manifest"
	"github.com/blueflyio/openstandardagents/pipeline"
)

var (
	exportOutput     string
	exportPython     string
	exportPort       int
	exportMemory     string
	exportTransports []string
	exportNoAPI      bool
	exportNoOpenAPI  bool
	exportNoDocker   bool
	exportNoTests    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <manifest>",
	Short: "Export a manifest as a runnable LangChain project",
	Long:  "Export validates the manifest, runs the generation pipeline, and writes the complete project — agent code, configuration, container descriptors and tests — to the output directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCmd,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory (default: ./<agent-name>)")
	exportCmd.Flags().StringVar(&exportPython, "python-version", "3.11", "python version for the generated project")
	exportCmd.Flags().IntVar(&exportPort, "port", export.DefaultAPIPort, "port the generated service listens on")
	exportCmd.Flags().StringVar(&exportMemory, "memory", "", "override the manifest memory backend (buffer, summary, entity, redis, postgres)")
	exportCmd.Flags().StringSliceVar(&exportTransports, "transports", nil, "override the manifest transport set (sse, websocket, a2a)")
	exportCmd.Flags().BoolVar(&exportNoAPI, "no-api", false, "skip the FastAPI serving surface")
	exportCmd.Flags().BoolVar(&exportNoOpenAPI, "no-openapi", false, "skip the OpenAPI document")
	exportCmd.Flags().BoolVar(&exportNoDocker, "no-docker", false, "skip the container descriptors")
	exportCmd.Flags().BoolVar(&exportNoTests, "no-tests", false, "skip the generated test suite")
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	m, err := manifest.LoadFile(args[0])
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		PythonVersion:  exportPython,
		IncludeAPI:     !exportNoAPI,
		IncludeOpenAPI: !exportNoOpenAPI,
		IncludeDocker:  !exportNoDocker,
		IncludeTests:   !exportNoTests,
		MemoryBackend:  exportMemory,
		Transports:     exportTransports,
		APIPort:        exportPort,
	}

	result, err := export.Export(cmd.Context(), m, opts, newLogger())
	if err != nil {
		return err
	}

	outDir := exportOutput
	if outDir == "" {
		outDir = manifest.PyIdent(m.Metadata.Name)
	}
	if err := result.Write(outDir); err != nil {
		return err
	}

	for _, w := range result.Metadata.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	printSummary(result, outDir)
	return nil
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

func printSummary(result *export.Result, outDir string) {
	meta := result.Metadata
	fmt.Println(accentStyle.Render(fmt.Sprintf("Exported %s", meta.AgentName)))

	for _, f := range result.Files.Sorted() {
		fmt.Printf("  %s %s %s\n",
			successStyle.Render("✓"),
			f.Path,
			dimStyle.Render(string(f.Type)),
		)
	}

	counts := result.Files.CountByType()
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"%d files (%d source, %d test) → %s  [%s, %s]",
		meta.FileCount,
		counts[codegen.FileSource],
		counts[codegen.FileTest],
		outDir,
		meta.ExportID,
		meta.Duration.Round(time.Millisecond),
	)))
}
