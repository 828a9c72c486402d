// Package cli provides the cmdbank command line.
package cli

import (
	"errors"
	"fmt"

	"cmdbank/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// ExitError carries the exit status of an executed command back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// newRootCommand builds the command tree and the session its commands
// share. Running it without a subcommand starts the terminal UI.
func newRootCommand() (*cobra.Command, *session) {
	sess := &session{}

	root := &cobra.Command{
		Use:   "cmdbank",
		Short: "Store, build and run parameterized command templates",
		Long: `cmdbank keeps a bank of GAM, Active Directory and PowerShell command
templates. Templates may contain <placeholders> that are filled in when a
command is built; built commands can be copied to the clipboard or run.

Run 'cmdbank' with no arguments for the interactive interface.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return sess.open(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ui.NewApp(sess.store, sess.runner, sess.history, sess.loaded.Status.String())
			p := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running app: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&sess.dataFile, "data-file", "", "Path to the commands JSON file (default ~/.cmdbank/commands.json)")
	flags.StringVar(&sess.logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	flags.BoolVar(&sess.printLogs, "print-logs", false, "Print logs to stderr instead of the log file")

	root.AddCommand(
		newListCmd(sess),
		newAddCmd(sess),
		newRemoveCmd(sess),
		newParamsCmd(sess),
		newBuildCmd(sess),
		newCopyCmd(sess),
		newRunCmd(sess),
		newDedupeCmd(sess),
		newSeedCmd(sess),
		newImportCmd(sess),
		newExportCmd(sess),
		newHistoryCmd(sess),
		newPathCmd(sess),
	)

	return root, sess
}

// execute runs root and closes the session whether or not the command
// failed. Cobra skips post-run hooks after an error.
func execute(root *cobra.Command, sess *session) error {
	err := root.Execute()
	if cerr := sess.close(); err == nil {
		err = cerr
	}
	return err
}

// Execute runs the command line and returns the process exit status.
func Execute() (int, error) {
	err := execute(newRootCommand())
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, nil
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}
