package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"cmdbank/config"
	"cmdbank/logging"
	"cmdbank/model"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

var (
	ErrNotExecutable = errors.New("cannot execute commands for this category")
	ErrEmptyCommand  = errors.New("nothing to execute")
)

// Kind says how a category's commands are carried out.
type Kind int

const (
	// Process runs Program with Args followed by the built command.
	Process Kind = iota
	// Browser opens URL; the command itself reaches it through the clipboard.
	Browser
)

// Plan describes how to execute commands of one category.
type Plan struct {
	Kind    Kind
	Program string
	Args    []string
	URL     string
}

// Runner executes built commands according to a per-category plan table.
type Runner struct {
	plans   map[model.Category]Plan
	openURL func(string) error
	log     zerolog.Logger
}

// New builds the plan table: AD and PowerShell go through PowerShell, GAM
// opens Cloud Shell unless it is configured to run locally.
func New(cfg config.RunnerConfig) *Runner {
	powershell := Plan{Kind: Process, Program: cfg.PowerShell, Args: []string{"-Command"}}
	gam := Plan{Kind: Browser, URL: cfg.CloudShellURL}
	if cfg.GAMLocal {
		gam = Plan{Kind: Process, Program: cfg.Shell, Args: []string{"-c"}}
	}

	return &Runner{
		plans: map[model.Category]Plan{
			model.GAM:        gam,
			model.AD:         powershell,
			model.PowerShell: powershell,
		},
		openURL: openBrowser,
		log:     logging.With("runner"),
	}
}

func openBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

// Plan returns the plan for category.
func (r *Runner) Plan(category model.Category) (Plan, error) {
	p, ok := r.plans[category]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrNotExecutable, category)
	}
	return p, nil
}

func (r *Runner) prepare(category model.Category, cmd string) (Plan, error) {
	if strings.TrimSpace(cmd) == "" {
		return Plan{}, ErrEmptyCommand
	}
	return r.Plan(category)
}

// waitDelay bounds how long Wait keeps copying output after the process
// is killed or exits while a child still holds its stdout or stderr.
var waitDelay = 250 * time.Millisecond

func (p Plan) command(ctx context.Context, cmd string) *exec.Cmd {
	args := append(append([]string{}, p.Args...), cmd)
	c := exec.CommandContext(ctx, p.Program, args...)
	c.WaitDelay = waitDelay
	return c
}

// Result is the outcome of a captured execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Opened is set instead of the other fields for browser plans.
	Opened string
}

// Failed reports a non-zero exit status.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Capture executes cmd and waits for it, collecting its output. A non-zero
// exit is reported through Result.ExitCode, not as an error.
func (r *Runner) Capture(ctx context.Context, category model.Category, cmd string) (Result, error) {
	p, err := r.prepare(category, cmd)
	if err != nil {
		return Result{}, err
	}

	if p.Kind == Browser {
		r.log.Info().Str("category", string(category)).Str("url", p.URL).Msg("opening browser")
		if err := r.openURL(p.URL); err != nil {
			return Result{}, fmt.Errorf("opening %s: %w", p.URL, err)
		}
		return Result{Opened: p.URL}, nil
	}

	var stdout, stderr bytes.Buffer
	c := p.command(ctx, cmd)
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.log.Info().Str("category", string(category)).Str("program", p.Program).Msg("running command")
	err = c.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.Is(err, exec.ErrWaitDelay):
		r.log.Debug().Msg("output left open by a child process")
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("running %s: %w", p.Program, err)
	}
	r.log.Debug().Int("exit_code", res.ExitCode).Msg("command finished")
	return res, nil
}

// OutputMsg is sent through the channel for each line of output
type OutputMsg struct {
	Line     string
	IsErr    bool
	Done     bool
	ErrMsg   string
	ExitCode int
}

// Stream executes cmd and streams its output through a channel, closing it
// when done. The final message has Done set.
func (r *Runner) Stream(ctx context.Context, category model.Category, cmd string, output chan<- OutputMsg) {
	defer close(output)

	p, err := r.prepare(category, cmd)
	if err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error(), ExitCode: -1}
		return
	}

	if p.Kind == Browser {
		if err := r.openURL(p.URL); err != nil {
			output <- OutputMsg{Done: true, ErrMsg: err.Error(), ExitCode: -1}
			return
		}
		output <- OutputMsg{Line: "Opened " + p.URL + " (command copied to clipboard)"}
		output <- OutputMsg{Done: true}
		return
	}

	c := p.command(ctx, cmd)

	// The command writes into pipes we own, so readers see EOF once Wait
	// returns even if a child process still holds the originals.
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	c.Stdout = outW
	c.Stderr = errW

	if err := c.Start(); err != nil {
		output <- OutputMsg{Done: true, ErrMsg: err.Error(), ExitCode: -1}
		return
	}
	r.log.Info().Str("category", string(category)).Str("program", p.Program).Msg("streaming command")

	// Stream stdout and stderr concurrently
	done := make(chan struct{}, 2)

	streamReader := func(rd io.Reader, isErr bool) {
		scanner := bufio.NewScanner(rd)
		for scanner.Scan() {
			output <- OutputMsg{Line: scanner.Text(), IsErr: isErr}
		}
		io.Copy(io.Discard, rd)
		done <- struct{}{}
	}

	go streamReader(outR, false)
	go streamReader(errR, true)

	err = c.Wait()
	outW.Close()
	errW.Close()

	<-done
	<-done

	if err != nil && !errors.Is(err, exec.ErrWaitDelay) {
		output <- OutputMsg{Done: true, ErrMsg: err.Error(), ExitCode: c.ProcessState.ExitCode()}
	} else {
		output <- OutputMsg{Done: true}
	}
}
