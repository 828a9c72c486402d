package cli

import (
	"errors"
	"fmt"
	"strings"

	"cmdbank/clip"
	"cmdbank/logging"
	"cmdbank/model"
	"cmdbank/placeholder"

	"github.com/spf13/cobra"
)

// buildOptions are the flags shared by build, copy and run.
type buildOptions struct {
	sets []string
	last bool
}

func (o *buildOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.sets, "set", "s", nil, "Placeholder value as name=value (repeatable)")
	cmd.Flags().BoolVar(&o.last, "last", false, "Default unset placeholders to the values used last time")
}

func parseSets(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want name=value", s)
		}
		values[name] = value
	}
	return values, nil
}

// build fills the template named by category and description and
// remembers the supplied values.
func (s *session) build(args []string, opts *buildOptions) (model.Category, model.Record, string, error) {
	c, rec, err := s.record(args[0], args[1])
	if err != nil {
		return "", model.Record{}, "", err
	}
	values, err := parseSets(opts.sets)
	if err != nil {
		return "", model.Record{}, "", err
	}

	if opts.last {
		last, err := s.history.LastParams(c, rec.Command)
		if err != nil {
			logging.Logger.Warn().Err(err).Msg("loading last params")
		}
		for k, v := range last {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	if placeholder.Has(rec.Command) && len(values) > 0 {
		if err := s.history.SaveParams(c, rec.Command, values); err != nil {
			logging.Logger.Warn().Err(err).Msg("saving params")
		}
	}
	return c, rec, placeholder.Build(rec.Command, values), nil
}

func newBuildCmd(sess *session) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:     "build <category> <description>",
		Short:   "Print a command with its placeholders filled in",
		Example: `  cmdbank build GAM "Add a user to a group" --set user=jo@example.com --set group=ops`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, built, err := sess.build(args, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), built)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newCopyCmd(sess *session) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "copy <category> <description>",
		Short: "Build a command and copy it to the clipboard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, built, err := sess.build(args, opts)
			if err != nil {
				return err
			}
			if err := clip.Copy(built); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Command copied to clipboard.")
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRunCmd(sess *session) *cobra.Command {
	opts := &buildOptions{}
	var noCopy bool

	cmd := &cobra.Command{
		Use:   "run <category> <description>",
		Short: "Build a command, copy it to the clipboard and execute it",
		Long: `Build a command, copy it to the clipboard and execute it.

AD and PowerShell commands run through PowerShell. GAM commands open Google
Cloud Shell in the browser, where the copied command can be pasted, unless
CMDBANK_GAM_LOCAL is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, rec, built, err := sess.build(args, opts)
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			if !noCopy {
				if err := clip.Copy(built); err != nil && !errors.Is(err, clip.ErrNothingToCopy) {
					fmt.Fprintf(errOut, "warning: could not copy to clipboard: %v\n", err)
				}
			}

			res, err := sess.runner.Capture(cmd.Context(), c, built)
			if err != nil {
				return err
			}
			if res.Opened != "" {
				fmt.Fprintf(out, "Opening %s... Command copied to clipboard.\n", res.Opened)
			}
			if res.Stdout != "" {
				fmt.Fprintln(out, res.Stdout)
			}
			if res.Stderr != "" {
				fmt.Fprintln(errOut, res.Stderr)
			}

			run := model.Run{Category: c, Description: rec.Description, Command: built, ExitCode: res.ExitCode}
			if _, err := sess.history.RecordRun(run); err != nil {
				logging.Logger.Warn().Err(err).Msg("recording run")
			}

			if res.Failed() {
				return &ExitError{Code: res.ExitCode}
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&noCopy, "no-copy", false, "Do not copy the built command to the clipboard")
	return cmd
}
