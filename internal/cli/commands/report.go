package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tmdlint/pkg/report"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "report <result.json>",
		Short: "Render the Markdown report of a saved JSON result",
		Long: `Render the Markdown report of an analysis result saved with
'tmdlint analyze --json'. The report is written to stdout unless -o is given.`,
		Example: `  tmdlint analyze ./Sales.SemanticModel --json result.json
  tmdlint report result.json -o report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				return report.WriteMarkdown(cmd.OutOrStdout(), doc)
			}
			if err := writeFile(outPath, func(w io.Writer) error { return report.WriteMarkdown(w, doc) }); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			cc.Renderer.Success("report written to " + outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the report to this file")

	return cmd
}

func readDocument(path string) (*report.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := report.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return doc, nil
}
