package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"cmdbank/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newDedupeCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Collapse duplicate commands in the data file",
		Long: `Collapse duplicate (command, description) pairs in every category,
keeping the first occurrence. This also happens on every load; the command
reports what was removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed := sess.loaded.Removed + sess.store.Deduplicate()
			if err := sess.store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicate command(s).\n", removed)
			return nil
		},
	}
}

func newSeedCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the starter GAM, AD and PowerShell commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := sess.store.Merge(store.Defaults())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d command(s).\n", added)
			return nil
		},
	}
}

func newImportCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge commands from another data file, skipping duplicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			other, err := store.Decode(raw)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			added, err := sess.store.Merge(other)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d command(s).\n", added)
			return nil
		},
	}
}

func newExportCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all commands as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return sess.store.Export(cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err := sess.store.Export(&buf); err != nil {
				return err
			}
			if err := os.WriteFile(args[0], buf.Bytes(), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commands exported to %s.\n", args[0])
			return nil
		},
	}
}

func newHistoryCmd(sess *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess.db == nil {
				return errors.New("history is disabled")
			}
			runs, err := sess.db.Recent(limit)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("WHEN", "CATEGORY", "EXIT", "COMMAND")
			for _, r := range runs {
				t.Row(r.CreatedAt.Local().Format("2006-01-02 15:04"), string(r.Category), strconv.Itoa(r.ExitCode), r.Command)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func newPathCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the data file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), sess.store.Path())
			return nil
		},
	}
}
