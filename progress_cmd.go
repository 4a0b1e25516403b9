package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/vokabel/internal/progress"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

var (
	progressCmd = &cobra.Command{
		Use:   "progress",
		Short: "Show or clear the saved reading position",
		Long:  paragraph(fmt.Sprintf("\nInspect the %s the reader continues from.", keyword("saved position"))),
		Args:  cobra.NoArgs,
	}

	progressShowCmd = &cobra.Command{
		Use:     "show [SOURCE]",
		Short:   "Print the entry the reader will continue from",
		Example: paragraph("vokabel progress show\nvokabel progress show words_b1.csv"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := sourceFromArgs(args)
			if err != nil {
				return err
			}
			list, _, err := vocab.Load(cmd.Context(), source)
			if err != nil {
				return err //nolint:wrapcheck
			}

			store, err := openProgressStrict()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			return showProgress(cmd.OutOrStdout(), store, list)
		},
	}

	progressClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openProgressStrict()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			if err := store.Clear(); err != nil {
				return fmt.Errorf("unable to clear progress: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared.")
			return nil
		},
	}
)

// openProgressStrict opens the on-disk store, failing instead of falling
// back to memory.
func openProgressStrict() (*progress.Store, error) {
	path, err := progressPath()
	if err != nil {
		return nil, err
	}
	backend, err := progress.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open progress database: %w", err)
	}
	return progress.New(backend), nil
}

func showProgress(w io.Writer, store *progress.Store, list vocab.List) error {
	store.SetLength(list.Len())
	i, ok := store.Load()
	if !ok {
		_, err := fmt.Fprintf(w, "No saved position. %d entries, the reader starts at the top.\n", list.Len())
		return err //nolint:wrapcheck
	}

	entry, _ := list.At(i)
	line := fmt.Sprintf("Continue at %d of %d: %s", i+1, list.Len(), entry.Word)
	if at, ok := store.SavedAt(); ok {
		line += fmt.Sprintf(" (saved %s)", humanize.Time(at))
	}
	_, err := fmt.Fprintln(w, line)
	return err //nolint:wrapcheck
}

func init() {
	progressCmd.AddCommand(progressShowCmd, progressClearCmd)
}
