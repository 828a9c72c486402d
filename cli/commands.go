package cli

import (
	"fmt"
	"io"

	"cmdbank/model"
	"cmdbank/placeholder"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

func newListCmd(sess *session) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List stored commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := sess.store.Categories()
			if len(args) == 1 {
				c, err := sess.category(args[0])
				if err != nil {
					return err
				}
				cats = []model.Category{c}
			}

			out := cmd.OutOrStdout()
			for _, c := range cats {
				recs := sess.store.Records(c)
				if filter != "" {
					recs = filterRecords(recs, filter)
				}
				printCategory(out, c, recs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter on description and command")
	return cmd
}

func filterRecords(recs []model.Record, query string) []model.Record {
	targets := make([]string, len(recs))
	for i, r := range recs {
		targets[i] = r.Description + " " + r.Command
	}
	matches := fuzzy.Find(query, targets)
	out := make([]model.Record, len(matches))
	for i, m := range matches {
		out[i] = recs[m.Index]
	}
	return out
}

func printCategory(w io.Writer, c model.Category, recs []model.Record) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", c.Info().Title, len(recs))))
	for _, r := range recs {
		fmt.Fprintf(w, "  %s\n    %s\n", r.Description, commandStyle.Render(r.Command))
	}
}

func newAddCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <command> <description>",
		Short: "Add a command template",
		Example: `  cmdbank add GAM "gam info user <email>" "Show user info"
  cmdbank add AD "Get-ADUser -Identity <user>" "Get a specific user"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sess.category(args[0])
			if err != nil {
				return err
			}
			if err := sess.store.Add(c, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Command added to %s category.\n", c)
			return nil
		},
	}
}

func newRemoveCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category> <description>",
		Short: "Remove the first command with the given description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sess.category(args[0])
			if err != nil {
				return err
			}
			if err := sess.store.Remove(c, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Command removed from %s category.\n", c)
			return nil
		},
	}
}

func newParamsCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "params <category> <description>",
		Short: "Print the placeholders of a command, one per occurrence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rec, err := sess.record(args[0], args[1])
			if err != nil {
				return err
			}
			for _, name := range placeholder.Extract(rec.Command) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
