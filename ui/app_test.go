package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"cmdbank/clip"
	"cmdbank/config"
	"cmdbank/model"
	"cmdbank/runner"
	"cmdbank/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	runs   []model.Run
	saved  map[string]map[string]string
	params map[string]string
}

func (h *fakeHistory) RecordRun(run model.Run) (int64, error) {
	h.runs = append(h.runs, run)
	return int64(len(h.runs)), nil
}

func (h *fakeHistory) SaveParams(_ model.Category, template string, values map[string]string) error {
	if h.saved == nil {
		h.saved = map[string]map[string]string{}
	}
	cp := map[string]string{}
	for k, v := range values {
		cp[k] = v
	}
	h.saved[template] = cp
	return nil
}

func (h *fakeHistory) LastParams(model.Category, string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range h.params {
		out[k] = v
	}
	return out, nil
}

func newTestApp(t *testing.T, seed model.Catalog) (*App, *store.Store, *fakeHistory) {
	t.Helper()
	s := store.New(afero.NewMemMapFs(), "/data/commands.json")
	if seed != nil {
		_, err := s.Merge(seed)
		require.NoError(t, err)
	}
	r := runner.New(config.RunnerConfig{Shell: "sh", PowerShell: "pwsh", GAMLocal: true})
	h := &fakeHistory{}

	var copied []string
	orig := clip.Writer
	clip.Writer = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	t.Cleanup(func() { clip.Writer = orig })

	a := NewApp(s, r, h, "Command data loaded.")
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a, s, h
}

func press(a *App, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(k)
	}
	return cmd
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestStartsOnNoneSelected(t *testing.T) {
	a, _, _ := newTestApp(t, store.Defaults())

	assert.Equal(t, model.GAM, a.category())
	assert.Equal(t, "", a.selected())
	assert.Equal(t, "Command data loaded.", a.status)
	assert.Contains(t, a.View(), noneSelected)

	press(a, keyEnter)
	assert.Empty(t, a.built)
}

func TestBuildWithParams(t *testing.T) {
	a, _, h := newTestApp(t, model.Catalog{
		model.GAM: {{Command: "gam user <user> add group <group>; gam info group <group>", Description: "Add a user to a group"}},
	})

	press(a, keyDown, keyEnter)
	require.Equal(t, modeParam, a.mode)
	assert.Equal(t, []string{"user", "group"}, a.paramNames)

	typeText(a, "jo")
	press(a, keyEnter)
	typeText(a, "ops")
	press(a, keyEnter)

	assert.Equal(t, modeNormal, a.mode)
	assert.Equal(t, "gam user jo add group ops; gam info group ops", a.built)
	assert.Equal(t, map[string]string{"user": "jo", "group": "ops"},
		h.saved["gam user <user> add group <group>; gam info group <group>"])
	assert.Contains(t, a.View(), "gam user jo add group ops")
}

func TestBuildPrefillsLastParams(t *testing.T) {
	a, _, h := newTestApp(t, model.Catalog{
		model.AD: {{Command: "Get-ADUser -Identity <user>", Description: "Get a specific user"}},
	})
	h.params = map[string]string{"user": "al"}

	press(a, keyTab, keyDown, keyEnter)
	require.Equal(t, modeParam, a.mode)
	assert.Equal(t, "al", a.paramInput.Value())

	press(a, keyEnter)
	assert.Equal(t, "Get-ADUser -Identity al", a.built)
}

func TestBuildWithoutParams(t *testing.T) {
	a, _, _ := newTestApp(t, model.Catalog{
		model.GAM: {{Command: "gam info domain", Description: "Show domain information"}},
	})

	press(a, keyDown, keyEnter)
	assert.Equal(t, modeNormal, a.mode)
	assert.Equal(t, "gam info domain", a.built)
}

func TestSwitchCategoryClearsBuilt(t *testing.T) {
	a, _, _ := newTestApp(t, model.Catalog{
		model.GAM: {{Command: "gam info domain", Description: "Show domain information"}},
	})
	press(a, keyDown, keyEnter)
	require.NotEmpty(t, a.built)

	press(a, keyTab)
	assert.Equal(t, model.AD, a.category())
	assert.Empty(t, a.built)

	press(a, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, model.PowerShell, a.category())
}

func TestFilter(t *testing.T) {
	a, _, _ := newTestApp(t, store.Defaults())

	typeText(a, "suspend")
	require.GreaterOrEqual(t, len(a.filtered), 2)
	assert.Equal(t, "", a.filtered[0])
	for _, d := range a.filtered[1:] {
		assert.Contains(t, strings.ToLower(d), "suspend")
	}

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, a.descriptions, a.filtered)
}

func TestAddCommand(t *testing.T) {
	a, s, _ := newTestApp(t, nil)

	press(a, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Equal(t, modeAdd, a.mode)
	typeText(a, "Get-Service")
	press(a, keyTab)
	typeText(a, "List all services")
	press(a, keyEnter)

	assert.Equal(t, modeNormal, a.mode)
	assert.Equal(t, "Command added to GAM category.", a.status)
	assert.Equal(t, []model.Record{{Command: "Get-Service", Description: "List all services"}}, s.Records(model.GAM))
	assert.Equal(t, []string{"", "List all services"}, a.filtered)
}

func TestAddRejectsDuplicateAndBlank(t *testing.T) {
	a, s, _ := newTestApp(t, model.Catalog{
		model.GAM: {{Command: "gam info domain", Description: "Show domain information"}},
	})

	press(a, tea.KeyMsg{Type: tea.KeyCtrlN})
	typeText(a, "gam info domain")
	press(a, keyTab)
	typeText(a, "Show domain information")
	press(a, keyEnter)
	assert.Equal(t, modeAdd, a.mode)
	assert.Equal(t, "Duplicate command.", a.err)

	press(a, tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyCtrlN})
	typeText(a, "gam info users")
	press(a, keyEnter)
	assert.Equal(t, "Description cannot be empty.", a.err)
	assert.Len(t, s.Records(model.GAM), 1)
}

func TestRemoveCommand(t *testing.T) {
	a, s, _ := newTestApp(t, model.Catalog{
		model.AD: {
			{Command: "Get-ADDomain", Description: "Get domain information"},
			{Command: "Get-ADGroup -Identity <group>", Description: "Get a specific group"},
		},
	})
	press(a, keyTab)

	press(a, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, modeNormal, a.mode, "nothing selected")
	assert.Equal(t, "No command selected to remove.", a.status)

	press(a, keyDown, keyDown, keyDown, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Equal(t, modeDelete, a.mode)
	press(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	assert.Equal(t, []model.Record{{Command: "Get-ADDomain", Description: "Get domain information"}}, s.Records(model.AD))
	assert.Equal(t, 1, a.cursor)
	assert.Equal(t, "Command removed from AD category.", a.status)
}

func TestExecuteStreamsAndRecords(t *testing.T) {
	a, _, h := newTestApp(t, model.Catalog{
		model.GAM: {{Command: "echo <word>", Description: "Echo a word"}},
	})
	press(a, keyDown, keyEnter)
	typeText(a, "hello")
	press(a, keyEnter)
	require.Equal(t, "echo hello", a.built)

	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, a.running)
	for cmd != nil {
		_, cmd = a.Update(cmd())
	}

	assert.False(t, a.running)
	assert.Contains(t, a.outputLines, "hello")
	require.Len(t, h.runs, 1)
	assert.Equal(t, model.Run{Category: model.GAM, Description: "Echo a word", Command: "echo hello"}, h.runs[0])
	assert.Equal(t, "GAM command executed successfully.", a.status)
}

func TestExecuteNothingBuilt(t *testing.T) {
	a, _, h := newTestApp(t, nil)
	cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to execute.", a.status)
	assert.Empty(t, h.runs)

	press(a, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Nothing to copy.", a.status)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "gam inf...", truncate("gam info domain", 10))
	assert.Equal(t, "日本語...", truncate("日本語のコマンド", 9))

	got := truncate("Réinitialiser le mot de passe", 12)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, runewidth.StringWidth(got), 12)
	assert.True(t, strings.HasSuffix(got, "..."))
}
