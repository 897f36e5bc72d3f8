package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blueflyio/openstandardagents/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest>",
	Short: "Validate a manifest without exporting it",
	Long:  "Validate loads the manifest, applies defaults, and reports every violation at once — structural problems, duplicate tool names, missing endpoints and malformed input schemas.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateCmd,
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	m, err := manifest.LoadFile(args[0])
	if err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(os.Stderr, "%s %s: %s\n",
					errorStyle.Render("✗"), issue.Path, issue.Message)
			}
			return fmt.Errorf("%d validation issue(s)", len(verr.Issues))
		}
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("%s is valid", args[0])))
	fmt.Printf("  %s agent %q (%s/%s)\n",
		successStyle.Render("✓"), m.Metadata.Name, m.Spec.LLM.Provider, m.Spec.LLM.Model)
	fmt.Printf("  %s %d tool(s)\n", successStyle.Render("✓"), len(m.Spec.Tools))
	if m.HasMemory() {
		fmt.Printf("  %s memory: %s\n", successStyle.Render("✓"), m.Spec.Memory.Type)
	}
	if transports := m.EnabledTransports(); len(transports) > 0 {
		fmt.Printf("  %s streaming: %s\n", successStyle.Render("✓"), strings.Join(transports, ", "))
	}
	return nil
}
