package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cmdbank/clip"
	"cmdbank/logging"
	"cmdbank/model"
	"cmdbank/placeholder"
	"cmdbank/runner"
	"cmdbank/store"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
)

// History is where executions and last-used placeholder values are kept.
type History interface {
	RecordRun(run model.Run) (int64, error)
	SaveParams(category model.Category, template string, values map[string]string) error
	LastParams(category model.Category, template string) (map[string]string, error)
}

// NopHistory remembers nothing.
type NopHistory struct{}

func (NopHistory) RecordRun(model.Run) (int64, error) { return 0, nil }

func (NopHistory) SaveParams(model.Category, string, map[string]string) error { return nil }

func (NopHistory) LastParams(model.Category, string) (map[string]string, error) {
	return map[string]string{}, nil
}

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeDelete
	modeParam
)

const noneSelected = "(none selected)"

type App struct {
	store   *store.Store
	runner  *runner.Runner
	history History
	log     zerolog.Logger

	categories []model.Category
	catIndex   int
	// descriptions of the current category; index 0 is the empty
	// "none selected" entry
	descriptions []string
	filtered     []string

	// UI state
	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string

	// Search
	searchInput textinput.Model

	// Output
	output      viewport.Model
	outputLines []string
	running     bool
	outputChan  chan runner.OutputMsg
	cancelRun   context.CancelFunc
	current     model.Run

	// Add form
	formInputs []textinput.Model
	formFocus  int

	// Param input
	paramNames  []string
	paramValues map[string]string
	paramIndex  int
	paramInput  textinput.Model
	pending     *model.Record

	// Last built command and what it was built from
	built     string
	builtFrom model.Record
}

// NewApp returns the TUI model over an already loaded store. status is
// shown on the first frame.
func NewApp(s *store.Store, r *runner.Runner, history History, status string) *App {
	if history == nil {
		history = NopHistory{}
	}

	search := textinput.New()
	search.Placeholder = "Search descriptions..."
	search.Focus()

	app := &App{
		store:       s,
		runner:      r,
		history:     history,
		log:         logging.With("ui"),
		categories:  s.Categories(),
		searchInput: search,
		output:      viewport.New(80, 10),
		paramValues: make(map[string]string),
		status:      status,
	}
	app.refreshDescriptions()
	return app
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

type outputMsg runner.OutputMsg

func (a *App) category() model.Category {
	return a.categories[a.catIndex]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4   // account for app padding
		a.height = msg.Height - 2 // account for app padding
		a.output.Width = a.width - 4
		a.output.Height = a.height / 3
		return a, nil

	case outputMsg:
		if msg.Done {
			a.finishRun(runner.OutputMsg(msg))
			return a, nil
		}
		line := msg.Line
		if msg.IsErr {
			line = errorStyle.Render(line)
		}
		a.appendOutput(line)
		return a, waitForOutput(a.outputChan)

	case tea.KeyMsg:
		a.err = ""
		a.status = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modeAdd:
			return a.updateForm(msg)
		case modeDelete:
			return a.updateDelete(msg)
		case modeParam:
			return a.updateParam(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if a.cancelRun != nil {
			a.cancelRun()
		}
		return a, tea.Quit

	case "up":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	case "tab":
		a.switchCategory(1)

	case "shift+tab":
		a.switchCategory(-1)

	case "enter":
		return a.buildSelected()

	case "ctrl+y":
		a.copyBuilt()

	case "ctrl+x":
		return a.executeBuilt()

	case "ctrl+n":
		a.mode = modeAdd
		a.initForm()
		return a, nil

	case "ctrl+d":
		if a.selected() != "" {
			a.mode = modeDelete
		} else {
			a.status = "No command selected to remove."
		}
		return a, nil

	case "esc":
		if a.running && a.cancelRun != nil {
			a.cancelRun()
			a.status = "Cancelling..."
			return a, nil
		}
		a.searchInput.SetValue("")
		a.filterDescriptions()

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterDescriptions()
		return a, cmd
	}

	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.searchInput.Focus()
		return a, nil

	case "tab", "down":
		a.formFocus = (a.formFocus + 1) % len(a.formInputs)
		return a, a.focusFormInput()

	case "shift+tab", "up":
		a.formFocus--
		if a.formFocus < 0 {
			a.formFocus = len(a.formInputs) - 1
		}
		return a, a.focusFormInput()

	case "enter":
		return a.submitForm()

	default:
		var cmd tea.Cmd
		a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
		return a, cmd
	}
}

func (a *App) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		desc := a.selected()
		cat := a.category()
		if err := a.store.Remove(cat, desc); err != nil {
			a.err = err.Error()
		} else {
			a.status = fmt.Sprintf("Command removed from %s category.", cat)
		}
		a.refreshDescriptions()
		if a.cursor >= len(a.filtered) && a.cursor > 0 {
			a.cursor--
		}
		a.mode = modeNormal
		return a, nil

	case "n", "N", "esc":
		a.mode = modeNormal
		return a, nil
	}

	return a, nil
}

func (a *App) updateParam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.pending = nil
		a.searchInput.Focus()
		return a, nil

	case "enter":
		a.paramValues[a.paramNames[a.paramIndex]] = a.paramInput.Value()
		a.paramIndex++

		if a.paramIndex >= len(a.paramNames) {
			a.finishBuild()
			return a, nil
		}

		a.promptParam()
		return a, nil

	default:
		var cmd tea.Cmd
		a.paramInput, cmd = a.paramInput.Update(msg)
		return a, cmd
	}
}

func (a *App) switchCategory(step int) {
	n := len(a.categories)
	a.catIndex = ((a.catIndex+step)%n + n) % n
	a.cursor = 0
	a.clearBuilt()
	a.refreshDescriptions()
	a.status = fmt.Sprintf("Switched to %s commands", a.category())
}

// selected returns the highlighted description; "" is the none-selected entry.
func (a *App) selected() string {
	if a.cursor < 0 || a.cursor >= len(a.filtered) {
		return ""
	}
	return a.filtered[a.cursor]
}

func (a *App) buildSelected() (tea.Model, tea.Cmd) {
	desc := a.selected()
	if desc == "" {
		a.clearBuilt()
		return a, nil
	}
	rec, ok := a.store.Lookup(a.category(), desc)
	if !ok {
		a.err = "Command not found."
		return a, nil
	}

	a.pending = &rec
	a.paramNames = placeholder.Unique(placeholder.Extract(rec.Command))
	a.paramValues = make(map[string]string)
	a.paramIndex = 0

	if len(a.paramNames) == 0 {
		a.finishBuild()
		return a, nil
	}

	last, err := a.history.LastParams(a.category(), rec.Command)
	if err != nil {
		a.log.Warn().Err(err).Msg("loading last params")
	}
	for k, v := range last {
		a.paramValues[k] = v
	}

	a.mode = modeParam
	a.promptParam()
	return a, a.paramInput.Focus()
}

func (a *App) promptParam() {
	name := a.paramNames[a.paramIndex]
	a.paramInput = textinput.New()
	a.paramInput.Placeholder = name
	a.paramInput.SetValue(a.paramValues[name])
	a.paramInput.Focus()
}

func (a *App) finishBuild() {
	rec := *a.pending
	a.pending = nil
	a.built = placeholder.Build(rec.Command, a.paramValues)
	a.builtFrom = rec
	a.mode = modeNormal
	a.searchInput.Focus()

	if len(a.paramNames) > 0 {
		if err := a.history.SaveParams(a.category(), rec.Command, a.paramValues); err != nil {
			a.log.Warn().Err(err).Msg("saving params")
		}
	}
	a.status = "Command built successfully"
}

func (a *App) clearBuilt() {
	a.built = ""
	a.builtFrom = model.Record{}
}

func (a *App) copyBuilt() {
	if err := clip.Copy(a.built); err != nil {
		if errors.Is(err, clip.ErrNothingToCopy) {
			a.status = "Nothing to copy."
			return
		}
		a.err = err.Error()
		return
	}
	a.status = "Command copied to clipboard."
}

func (a *App) executeBuilt() (tea.Model, tea.Cmd) {
	if strings.TrimSpace(a.built) == "" {
		a.status = "Nothing to execute."
		return a, nil
	}
	if a.running {
		a.status = "A command is already running."
		return a, nil
	}

	copied := clip.Copy(a.built) == nil
	cat := a.category()
	a.current = model.Run{Category: cat, Description: a.builtFrom.Description, Command: a.built}

	a.running = true
	a.outputLines = []string{cmdPreviewStyle.Render("$ " + a.built), ""}
	a.output.SetContent(strings.Join(a.outputLines, "\n"))
	if copied {
		a.status = "Command copied to clipboard."
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelRun = cancel
	a.outputChan = make(chan runner.OutputMsg)
	go a.runner.Stream(ctx, cat, a.built, a.outputChan)

	return a, waitForOutput(a.outputChan)
}

func (a *App) finishRun(msg runner.OutputMsg) {
	a.running = false
	a.outputChan = nil
	if a.cancelRun != nil {
		a.cancelRun()
		a.cancelRun = nil
	}
	if msg.ErrMsg != "" {
		a.appendOutput(errorStyle.Render("Error: " + msg.ErrMsg))
		a.err = fmt.Sprintf("%s command execution failed.", a.current.Category)
	} else {
		a.status = fmt.Sprintf("%s command executed successfully.", a.current.Category)
	}
	a.output.GotoBottom()

	a.current.ExitCode = msg.ExitCode
	if _, err := a.history.RecordRun(a.current); err != nil {
		a.log.Warn().Err(err).Msg("recording run")
	}
}

func (a *App) appendOutput(line string) {
	a.outputLines = append(a.outputLines, line)
	a.output.SetContent(strings.Join(a.outputLines, "\n"))
	a.output.GotoBottom()
}

func waitForOutput(ch chan runner.OutputMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return outputMsg{Done: true}
		}
		return outputMsg(msg)
	}
}

func (a *App) initForm() {
	a.formInputs = make([]textinput.Model, 2)

	cmdInput := textinput.New()
	cmdInput.Placeholder = a.category().Info().CommandLabel + " (use <param> for dynamic values)"
	cmdInput.Focus()

	descInput := textinput.New()
	descInput.Placeholder = "Description"

	a.formInputs[0] = cmdInput
	a.formInputs[1] = descInput
	a.formFocus = 0
}

func (a *App) focusFormInput() tea.Cmd {
	for i := range a.formInputs {
		a.formInputs[i].Blur()
	}
	return a.formInputs[a.formFocus].Focus()
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	cmd := strings.TrimSpace(a.formInputs[0].Value())
	desc := strings.TrimSpace(a.formInputs[1].Value())
	cat := a.category()

	err := a.store.Add(cat, cmd, desc)
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		a.err = verr.Message
		return a, nil
	case errors.Is(err, store.ErrDuplicate):
		a.err = "Duplicate command."
		return a, nil
	case err != nil:
		// The record is kept in memory even though saving failed.
		a.err = err.Error()
	default:
		a.status = fmt.Sprintf("Command added to %s category.", cat)
	}

	a.refreshDescriptions()
	a.mode = modeNormal
	a.searchInput.Focus()
	return a, nil
}

func (a *App) refreshDescriptions() {
	a.descriptions = a.store.Descriptions(a.category())
	a.filterDescriptions()
}

// filterDescriptions narrows the list to fuzzy matches, keeping the
// none-selected entry on top.
func (a *App) filterDescriptions() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.descriptions
	} else {
		targets := a.descriptions[1:]
		matches := fuzzy.Find(query, targets)
		a.filtered = make([]string, 0, len(matches)+1)
		a.filtered = append(a.filtered, "")
		for _, m := range matches {
			a.filtered = append(a.filtered, targets[m.Index])
		}
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cmdbank"))
	b.WriteString("  ")
	b.WriteString(a.renderTabs())
	b.WriteString("\n")
	if info := a.category().Info(); info.LinkURL != "" {
		b.WriteString(linkStyle.Render(info.LinkText + ": " + info.LinkURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := a.height - a.output.Height - 14
	if listHeight < 3 {
		listHeight = 3
	}

	if a.mode == modeAdd {
		b.WriteString(a.renderForm())
	} else {
		b.WriteString(a.renderList(listHeight))
	}

	if a.mode == modeDelete {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("Remove '%s'? (y/n)", a.selected())))
		b.WriteString("\n")
	}

	if a.mode == modeParam {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Enter value for <%s>: ", a.paramNames[a.paramIndex])))
		b.WriteString(a.paramInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(outputTitleStyle.Render("BUILT COMMAND"))
	b.WriteString("\n")
	built := a.built
	if built == "" {
		built = mutedStyle.Render("Select a command and press enter to build it.")
	}
	b.WriteString(builtStyle.Width(a.width - 4).Render(built))
	b.WriteString("\n")

	b.WriteString(outputTitleStyle.Render("OUTPUT"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Width(a.width - 4).Render(a.output.View()))
	b.WriteString("\n")

	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

func (a *App) renderTabs() string {
	tabs := make([]string, len(a.categories))
	for i, c := range a.categories {
		style := tabStyle
		if i == a.catIndex {
			style = activeTabStyle
		}
		tabs[i] = style.Render(c.Info().Title)
	}
	return strings.Join(tabs, " ")
}

func (a *App) renderList(height int) string {
	if len(a.filtered) <= 1 && a.searchInput.Value() == "" {
		return mutedStyle.Render("No commands yet. Press ctrl+n to add one.\n")
	}

	var lines []string
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}

	end := start + height
	if end > len(a.filtered) {
		end = len(a.filtered)
	}

	for i := start; i < end; i++ {
		desc := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		if desc == "" {
			lines = append(lines, style.Render(prefix+noneSelected))
			continue
		}
		lines = append(lines, style.Render(prefix+desc))
		if rec, ok := a.store.Lookup(a.category(), desc); ok {
			lines = append(lines, cmdPreviewStyle.Render("  "+truncate(rec.Command, a.width-10)))
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderForm() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Add " + a.category().Info().CommandLabel))
	b.WriteString("\n\n")

	labels := []string{"Command", "Description"}
	for i, input := range a.formInputs {
		b.WriteString(labelStyle.Render(labels[i] + ": "))
		style := inputStyle
		if i == a.formFocus {
			style = focusedInputStyle
		}
		b.WriteString(style.Width(a.width - 20).Render(input.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderHelp() string {
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "build"},
		{"ctrl+y", "copy"},
		{"ctrl+x", "run"},
		{"tab", "category"},
		{"ctrl+n", "add"},
		{"ctrl+d", "remove"},
		{"ctrl+c", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

// truncate shortens s to max terminal cells.
func truncate(s string, max int) string {
	if max < 4 {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
