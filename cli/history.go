package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"umlboard/diagram"
	"umlboard/history"
	"umlboard/storage"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or step through the persisted undo history",
		Long: `History works on the undo stack kept in the configured storage backend.

Pass the diagram file to address the stack of that file; without it the
configured history key is used.`,
	}

	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryClearCmd(opts))
	cmd.AddCommand(newHistoryStepCmd(opts, "undo", "Step the history back one snapshot", (*history.Manager).Undo))
	cmd.AddCommand(newHistoryStepCmd(opts, "redo", "Step the history forward one snapshot", (*history.Manager).Redo))

	return cmd
}

// withSession loads the config and opens the history addressed by args.
func withSession(cmd *cobra.Command, opts *rootOptions, args []string, fn func(*session) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	var file string
	if len(args) > 0 {
		file = args[0]
	}
	sess, err := openSession(cmd.Context(), cfg, file, loggerFromContext(cmd.Context()))
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "List the snapshots in the history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args, func(s *session) error {
				printHistory(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

func printHistory(w io.Writer, s *session) {
	h := s.history
	printTitle(w, "History "+s.key)
	if h.Len() == 0 {
		printInfo(w, "History is empty")
		return
	}
	printDetail(w, "position %s, limit %d", h.String(), h.MaxSize())

	for i, snap := range h.Snapshots() {
		marker := " "
		if i == h.Position() {
			marker = colorValue.Sprint(iconCurrent)
		}
		fmt.Fprintf(w, "%s %3d  %-32s %s\n", marker, i+1, summarize(snap), colorInfo.Sprint(storage.Hash([]byte(snap))[:8]))
	}
}

// summarize describes a snapshot by its contents.
func summarize(snap string) string {
	d, err := diagram.Unmarshal(snap)
	if err != nil {
		return "unreadable snapshot"
	}
	return fmt.Sprintf("%s, %s", plural(len(d.Shapes()), "shape"), plural(len(d.Relationships), "relationship"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Remove every snapshot from the history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args, func(s *session) error {
				n := s.history.Len()
				s.history.Clear()
				if err := s.store.Delete(cmd.Context(), s.key); err != nil {
					return fmt.Errorf("delete %s: %w", s.key, err)
				}
				printSuccess(cmd.OutOrStdout(), "Cleared %s", plural(n, "snapshot"))
				return nil
			})
		},
	}
}

func newHistoryStepCmd(opts *rootOptions, name, short string, step func(*history.Manager) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args, func(s *session) error {
				out := cmd.OutOrStdout()
				snap, ok := step(s.history)
				if !ok {
					printInfo(out, "Nothing to %s", name)
					return nil
				}
				printSuccess(out, "Now at %s", s.history.String())
				printDetail(out, "%s", summarize(snap))
				return nil
			})
		},
	}
}
