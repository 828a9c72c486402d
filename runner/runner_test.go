package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"cmdbank/config"
	"cmdbank/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig() config.RunnerConfig {
	return config.RunnerConfig{
		Shell:         "sh",
		PowerShell:    "pwsh",
		GAMLocal:      true,
		CloudShellURL: "https://shell.cloud.google.com/",
	}
}

func TestPlans(t *testing.T) {
	r := New(config.RunnerConfig{Shell: "sh", PowerShell: "powershell.exe", CloudShellURL: "https://shell.example/"})

	gam, err := r.Plan(model.GAM)
	require.NoError(t, err)
	assert.Equal(t, Browser, gam.Kind)
	assert.Equal(t, "https://shell.example/", gam.URL)

	for _, c := range []model.Category{model.AD, model.PowerShell} {
		p, err := r.Plan(c)
		require.NoError(t, err)
		assert.Equal(t, Plan{Kind: Process, Program: "powershell.exe", Args: []string{"-Command"}}, p)
	}

	_, err = r.Plan("Azure")
	assert.ErrorIs(t, err, ErrNotExecutable)
}

func TestPlanGAMLocal(t *testing.T) {
	r := New(localConfig())
	p, err := r.Plan(model.GAM)
	require.NoError(t, err)
	assert.Equal(t, Plan{Kind: Process, Program: "sh", Args: []string{"-c"}}, p)
}

func TestCaptureProcess(t *testing.T) {
	r := New(localConfig())

	res, err := r.Capture(context.Background(), model.GAM, "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "out", res.Stdout)
	assert.Equal(t, "err", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestCaptureEmptyCommand(t *testing.T) {
	r := New(localConfig())
	_, err := r.Capture(context.Background(), model.GAM, "   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestCaptureMissingProgram(t *testing.T) {
	cfg := localConfig()
	cfg.PowerShell = "/nonexistent/pwsh"
	r := New(cfg)

	_, err := r.Capture(context.Background(), model.AD, "Get-ADDomain")
	assert.Error(t, err)
}

func TestCaptureBrowser(t *testing.T) {
	r := New(config.RunnerConfig{CloudShellURL: "https://shell.example/"})
	var opened []string
	r.openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	res, err := r.Capture(context.Background(), model.GAM, "gam info domain")
	require.NoError(t, err)
	assert.Equal(t, "https://shell.example/", res.Opened)
	assert.Equal(t, []string{"https://shell.example/"}, opened)

	r.openURL = func(string) error { return errors.New("no display") }
	_, err = r.Capture(context.Background(), model.GAM, "gam info domain")
	assert.ErrorContains(t, err, "no display")
}

func collect(ch <-chan OutputMsg) []OutputMsg {
	var msgs []OutputMsg
	for m := range ch {
		msgs = append(msgs, m)
	}
	return msgs
}

func TestStream(t *testing.T) {
	r := New(localConfig())
	ch := make(chan OutputMsg)
	go r.Stream(context.Background(), model.GAM, "echo one; echo two", ch)

	msgs := collect(ch)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Line)
	assert.Equal(t, "two", msgs[1].Line)
	assert.True(t, msgs[2].Done)
	assert.Empty(t, msgs[2].ErrMsg)
}

func TestStreamFailure(t *testing.T) {
	r := New(localConfig())
	ch := make(chan OutputMsg)
	go r.Stream(context.Background(), model.GAM, "echo bad >&2; exit 2", ch)

	msgs := collect(ch)
	require.Len(t, msgs, 2)
	assert.Equal(t, OutputMsg{Line: "bad", IsErr: true}, msgs[0])
	assert.True(t, msgs[1].Done)
	assert.Equal(t, 2, msgs[1].ExitCode)
	assert.NotEmpty(t, msgs[1].ErrMsg)
}

func TestStreamNotExecutable(t *testing.T) {
	r := New(localConfig())
	ch := make(chan OutputMsg)
	go r.Stream(context.Background(), "Azure", "az login", ch)

	msgs := collect(ch)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Done)
	assert.Contains(t, msgs[0].ErrMsg, ErrNotExecutable.Error())
}

func TestStreamCancelWithChildProcess(t *testing.T) {
	r := New(localConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan OutputMsg)
	go r.Stream(ctx, model.GAM, "echo started; sleep 5; echo after", ch)

	first := <-ch
	require.Equal(t, "started", first.Line)

	start := time.Now()
	cancel()
	msgs := collect(ch)
	elapsed := time.Since(start)

	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.True(t, last.Done)
	assert.NotEmpty(t, last.ErrMsg)
	assert.Less(t, elapsed, time.Second)
	for _, m := range msgs {
		assert.NotEqual(t, "after", m.Line)
	}
}

func TestCaptureCancelWithChildProcess(t *testing.T) {
	r := New(localConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := r.Capture(ctx, model.GAM, "sleep 5; echo after")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, res.Failed())
	assert.Empty(t, res.Stdout)
}
