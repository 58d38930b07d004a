package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"umlboard/config"
	"umlboard/diagram"
	"umlboard/editor"
	"umlboard/terminal"
)

// newScreen is replaced in tests by a simulation screen.
var newScreen = tcell.NewScreen

func newEditCmd(opts *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a diagram in the terminal",
		Long: `Edit opens the terminal diagram editor.

If file exists it is loaded, and the undo history of an earlier session on
the same file is resumed when the file has not changed since. Ctrl+S
writes the diagram back to file.

Keys: Tab toggles select/connect mode, e/n/u add an entity, note or
enumeration, 1-5 pick the relationship type, a auto-routes the selected
relationship, f fits the view, arrows pan, +/- zoom, Ctrl+Z/Ctrl+Y undo
and redo, Delete removes the selection, Ctrl+Q quits.

Clicking an end of the selected relationship re-attaches it to the next
shape clicked. Right-clicking a bend point removes it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			var path string
			if len(args) > 0 {
				path = args[0]
			}

			// Log lines on stderr would tear the screen.
			logger := log.New(io.Discard)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger = newLogger(f, loggerFromContext(cmd.Context()).GetLevel())
			}

			return runEditor(cmd.Context(), cfg, path, logger)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file while editing")
	return cmd
}

func runEditor(ctx context.Context, cfg config.Config, path string, logger *log.Logger) error {
	sess, err := openSession(ctx, cfg, path, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ed, err := newEditor(cfg, sess, path, logger)
	if err != nil {
		return err
	}
	defer ed.Close()

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	title := "untitled"
	if path != "" {
		title = filepath.Base(path)
	}
	app := terminal.New(screen, ed,
		terminal.WithCellSize(cfg.Editor.CellWidth, cfg.Editor.CellHeight),
		terminal.WithLogger(logger),
		terminal.WithTitle(title),
	)
	return app.Run(ctx)
}

// newEditor builds the editor for path. When the file matches the current
// snapshot of the restored history the stack is kept, otherwise the file
// replaces it.
func newEditor(cfg config.Config, sess *session, path string, logger *log.Logger) (*editor.Editor, error) {
	edOpts := []editor.Option{
		editor.WithLogger(logger),
		editor.WithSnapThreshold(cfg.Editor.SnapThreshold),
		editor.WithHoverThreshold(cfg.Editor.HoverThreshold),
		editor.WithAllowSelfRelationships(cfg.Editor.AllowSelfRelationships),
	}
	if path != "" {
		edOpts = append(edOpts, editor.WithSaveHandler(func(snapshot string) error {
			return os.WriteFile(path, []byte(snapshot+"\n"), 0o644)
		}))
	}
	ed := editor.New(sess.history, edOpts...)
	if path == "" {
		return ed, nil
	}

	d, raw, err := readDiagram(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("new diagram", "file", path)
		return ed, nil
	}
	if err != nil {
		return nil, err
	}

	canonical, err := diagram.Marshal(d)
	if err != nil {
		return nil, err
	}
	if cur, ok := sess.history.Current(); ok && cur == canonical {
		logger.Info("resuming history", "file", path, "history", sess.history.String())
		return ed, nil
	}
	if err := ed.Store.Import(raw); err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	logger.Info("loaded diagram", "file", path, "shapes", len(d.Shapes()), "relationships", len(d.Relationships))
	return ed, nil
}
