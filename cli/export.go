package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"umlboard/export"
	"umlboard/importer"
	"umlboard/markdown"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
		into   string
		block  int
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a diagram to another text format",
		Long: `Export converts a diagram snapshot to one of:

` + formatList() + `
Without --format the format is taken from the extension of --output, and
falls back to ascii.

With --into the output replaces a fenced diagram block of a markdown file.
--block picks the block (1-based); otherwise the first block written in
the export format is used, and its fence decides the format when --format
is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if into != "" {
				return exportInto(cmd, args[0], into, format, block)
			}
			prog := newProgress(loggerFromContext(cmd.Context()))

			f, err := resolveFormat(format, output)
			if err != nil {
				return err
			}
			exp, err := export.NewExporter(f)
			if err != nil {
				return err
			}

			d, _, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			text, err := exp.Export(d)
			if err != nil {
				return fmt.Errorf("export %s: %w", exp.GetFormatName(), err)
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			prog.done("exported " + exp.GetFormatName())
			printSuccess(cmd.OutOrStdout(), "Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&into, "into", "", "markdown file whose diagram block is replaced")
	cmd.Flags().IntVar(&block, "block", 0, "diagram block of --into to replace (1-based)")
	cmd.MarkFlagsMutuallyExclusive("output", "into")
	return cmd
}

// exportInto renders the diagram into a fenced block of a markdown file.
func exportInto(cmd *cobra.Command, file, target, format string, block int) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	content, err := os.ReadFile(target)
	if err != nil {
		return err
	}
	scanner := markdown.NewScanner(string(content))
	b, f, err := pickBlock(scanner.FindDiagramBlocks(), format, block)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	exp, err := export.NewExporter(f)
	if err != nil {
		return err
	}
	d, _, err := readDiagram(file)
	if err != nil {
		return err
	}
	text, err := exp.Export(d)
	if err != nil {
		return fmt.Errorf("export %s: %w", exp.GetFormatName(), err)
	}

	updated, err := scanner.ReplaceBlock(b, text)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	if err := os.WriteFile(target, []byte(updated), 0o644); err != nil {
		return err
	}
	prog.done("exported " + exp.GetFormatName())
	printSuccess(cmd.OutOrStdout(), "Updated %s block at line %d of %s", b.Type, b.StartLine+1, target)
	return nil
}

// pickBlock selects the block to replace and the format to write into it.
// An explicit block number wins; otherwise the first block whose fence
// names an export format (the requested one, when given) is used.
func pickBlock(blocks []markdown.DiagramBlock, format string, number int) (markdown.DiagramBlock, export.Format, error) {
	var want export.Format
	if format != "" {
		f, err := export.ParseFormat(format)
		if err != nil {
			return markdown.DiagramBlock{}, "", err
		}
		want = f
	}

	if number > 0 {
		if number > len(blocks) {
			return markdown.DiagramBlock{}, "", fmt.Errorf("block %d of %d: %w", number, len(blocks), importer.ErrNoBlock)
		}
		b := blocks[number-1]
		if want != "" {
			return b, want, nil
		}
		f, err := export.ParseFormat(b.Type)
		if err != nil {
			return markdown.DiagramBlock{}, "", fmt.Errorf("block %d: %w", number, err)
		}
		return b, f, nil
	}

	for _, b := range blocks {
		f, err := export.ParseFormat(b.Type)
		if err != nil || want != "" && f != want {
			continue
		}
		return b, f, nil
	}
	return markdown.DiagramBlock{}, "", importer.ErrNoBlock
}

// resolveFormat picks the export format from the flag, else from the
// output file's extension.
func resolveFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if ext := strings.ToLower(filepath.Ext(output)); ext != "" {
		for _, f := range export.GetAvailableFormats() {
			exp, err := export.NewExporter(f)
			if err == nil && exp.GetFileExtension() == ext {
				return f, nil
			}
		}
	}
	return export.FormatASCII, nil
}

func formatList() string {
	descs := export.GetFormatDescriptions()
	names := make([]string, 0, len(descs))
	for f := range descs {
		names = append(names, string(f))
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-9s %s\n", n, descs[export.Format(n)])
	}
	return sb.String()
}
