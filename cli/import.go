package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"umlboard/diagram"
	"umlboard/importer"
	"umlboard/markdown"
)

func newImportCmd() *cobra.Command {
	var (
		format string
		output string
		block  int
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Read a Mermaid or PlantUML class diagram into a diagram snapshot",
		Long: `Import converts a Mermaid or PlantUML class diagram into a diagram snapshot
and lays its shapes out left to right along the relationships.

The format is taken from --format, else from the file extension, else
detected from the content. Markdown files are searched for fenced diagram
blocks; --list shows them and --block picks one (1-based).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			path := args[0]

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if list {
				return listBlocks(cmd.OutOrStdout(), path, string(content))
			}

			registry := importer.NewImporterRegistry()
			var d *diagram.Diagram
			switch {
			case block > 0 || isMarkdown(path) && format == "":
				d, err = registry.ImportMarkdown(string(content), block)
			case format != "":
				d, err = registry.ImportWithFormat(string(content), format)
			default:
				d, err = registry.ImportFile(path, string(content))
			}
			if err != nil {
				if errors.Is(err, importer.ErrUnknownFormat) {
					return fmt.Errorf("%s: %w (supported: %s)", path, err,
						strings.Join(registry.GetAvailableFormats(), ", "))
				}
				return fmt.Errorf("%s: %w", path, err)
			}
			prog.done("imported " + path)

			snapshot, err := diagram.MarshalIndent(d)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), snapshot)
				return err
			}
			if err := os.WriteFile(output, []byte(snapshot+"\n"), 0o644); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s", output)
			printDetail(cmd.OutOrStdout(), "%s", summarize(snapshot))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (mermaid, plantuml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&block, "block", 0, "markdown diagram block to import (1-based)")
	cmd.Flags().BoolVar(&list, "list", false, "list the diagram blocks of a markdown file")
	return cmd
}

func listBlocks(w io.Writer, path, content string) error {
	blocks := markdown.NewScanner(content).FindDiagramBlocks()
	if len(blocks) == 0 {
		printWarning(w, "No diagram blocks in %s", path)
		return nil
	}
	printTitle(w, fmt.Sprintf("Diagram blocks in %s", path))
	for i, b := range blocks {
		printDetail(w, "%s", markdown.FormatBlockInfo(b, i))
	}
	return nil
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
