package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"umlboard/export"
	"umlboard/validation"
)

// ErrInvalidDiagram is returned by validate when problems were reported.
var ErrInvalidDiagram = errors.New("diagram has problems")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		lines     bool
		allowSelf bool
	)

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a diagram snapshot for structural problems",
		Long: `Validate reports dangling relationship endpoints, duplicate ids,
unknown kinds and types, undersized shapes and coordinates out of range.

With --lines the diagram is also rendered as text and checked for broken
box-drawing junctions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			out := cmd.OutOrStdout()
			path := args[0]

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			v := validation.New(validation.WithAllowSelf(allowSelf || cfg.Editor.AllowSelfRelationships))
			problems, err := v.ValidateSnapshot(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, p := range problems {
				printError(out, "%s", p)
			}

			var lineProblems []validation.LineError
			if lines {
				d, _, err := readDiagram(path)
				if err != nil {
					return err
				}
				text, err := export.NewASCIIExporter().Export(d)
				if err != nil {
					return err
				}
				lineProblems = validation.CheckLines(text)
				for _, p := range lineProblems {
					printWarning(out, "render %s", p)
				}
			}

			n := len(problems) + len(lineProblems)
			logger.Debug("validated", "file", path, "problems", len(problems), "line_problems", len(lineProblems))
			if n > 0 {
				return fmt.Errorf("%s: %w (%d)", path, ErrInvalidDiagram, n)
			}
			printSuccess(out, "%s is valid", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lines, "lines", false, "also check the rendered box drawing")
	cmd.Flags().BoolVar(&allowSelf, "allow-self", false, "accept relationships from a shape to itself")
	return cmd
}
