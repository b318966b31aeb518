package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/engine"
	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/parser"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

type sessionState int

const (
	statePlaying sessionState = iota
	stateSaveSlot
	stateRestoreSlot
	stateGameOver
)

const transcriptFile = "transcript.txt"

type model struct {
	state     sessionState
	engine    *engine.Engine
	parser    *parser.Parser
	screen    *screen
	saveDir   string
	textInput textinput.Model
	viewport  viewport.Model
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func newModel(eng *engine.Engine, scr *screen, saveDir string) model {
	ti := textinput.New()
	ti.Placeholder = "What do you do?"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return model{
		state:     statePlaying,
		engine:    eng,
		parser:    parser.New(eng.World()),
		screen:    scr,
		saveDir:   saveDir,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.screen.closeScript()
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			switch m.state {
			case statePlaying:
				if input == "" {
					return m, nil
				}
				if input == "/quit" {
					m.screen.closeScript()
					return m, tea.Quit
				}
				m.screen.user(input)
				if input == "/restart" {
					m.restart()
				} else {
					m.play(input)
				}
			case stateSaveSlot, stateRestoreSlot:
				m.finishSlot(input)
			case stateGameOver:
				yes := m.engine.Messages().Get(sysmsg.Yes)
				if input == "" || !strings.EqualFold(input[:1], yes[:1]) {
					m.screen.closeScript()
					return m, tea.Quit
				}
				m.screen.user(input)
				m.restart()
			}
			m.refreshLog()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := int(float64(msg.Width) * 0.75)
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(logWidth, msg.Height-6)
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = msg.Height - 6
		}
		m.refreshLog()
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// play runs one line of input and carries out the effects it asked for.
func (m *model) play(input string) {
	cmds, err := m.parser.Parse(input)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			m.screen.Emit(perr.Text(m.engine.Messages()))
		} else {
			m.screen.Emit(err.Error())
		}
		return
	}
	m.engine.Play(cmds)
	m.applyEffects()
}

func (m *model) applyEffects() {
	msgs := m.engine.Messages()
	for _, e := range m.screen.takeEffects() {
		log.Debugf("tui: effect %s", e)
		switch e {
		case engine.EffectSave:
			m.state = stateSaveSlot
			m.textInput.Placeholder = "Name of the save slot"
		case engine.EffectRestore:
			m.state = stateRestoreSlot
			m.textInput.Placeholder = "Slot to restore"
			if slots, err := models.ListSessions(m.saveDir); err == nil && len(slots) > 0 {
				m.textInput.Placeholder += " (" + strings.Join(slots, ", ") + ")"
			}
		case engine.EffectGameOver:
			m.state = stateGameOver
			m.screen.Emit(msgs.Get(sysmsg.PlayAgain))
			m.textInput.Placeholder = "Y/N"
		case engine.EffectScriptOn:
			if err := m.screen.openScript(filepath.Join(m.saveDir, transcriptFile)); err != nil {
				log.Errorf("tui: transcript: %v", err)
				m.screen.Emit(err.Error() + "\n")
				break
			}
			m.screen.Emit(msgs.Get(sysmsg.TranscriptOn))
		case engine.EffectScriptOff:
			m.screen.Emit(msgs.Get(sysmsg.TranscriptOff))
			m.screen.closeScript()
		case engine.EffectDelay:
			// Nothing to wait for: the whole turn is already on screen.
		}
	}
}

// finishSlot completes a save or restore once the slot name is known.
func (m *model) finishSlot(name string) {
	msgs := m.engine.Messages()
	w := m.engine.World()
	if name == "" {
		name = "current"
	}
	m.screen.user(name)
	if m.state == stateSaveSlot {
		if err := w.Save(m.saveDir, name); err != nil {
			log.Errorf("tui: save %s: %v", name, err)
			m.screen.Emit(msgs.Get(sysmsg.CantSave))
		} else {
			m.screen.Emit(msgs.Get(sysmsg.Saved))
		}
	} else {
		data, err := w.ReadSession(m.saveDir, name)
		if err == nil {
			err = m.engine.Resume(data)
		}
		if err != nil {
			log.Errorf("tui: restore %s: %v", name, err)
			m.screen.Emit(fmt.Sprintf("Cannot restore %q: %v\n", name, err))
		} else {
			m.screen.Emit(msgs.Get(sysmsg.Restored))
		}
	}
	m.state = statePlaying
	m.textInput.Placeholder = "What do you do?"
}

func (m *model) restart() {
	m.screen.clear()
	m.engine.Restart()
	m.engine.Prologue()
	m.state = statePlaying
	m.textInput.Placeholder = "What do you do?"
	m.applyEffects()
}

func (m *model) refreshLog() {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.screen.render(m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	logView := m.viewport.View()
	stateView := m.renderState()

	// Join log and state horizontally
	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		logView,
		stateView,
	)

	help := helpStyle.Render("Commands: /restart, /quit, SAVE, RESTORE, UNDO, or two words like GET LAMP.")

	s := lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+m.textInput.View(),
		"\n"+help,
	)
	return "\n" + s + "\n"
}

func (m model) renderState() string {
	w := m.engine.World()

	title := titleStyle.Render(strings.ToUpper(w.Title)) + "\n\n"
	location := titleStyle.Render("LOCATION") + "\n" + m.screen.room + "\n"

	invTitle := titleStyle.Render("INVENTORY") + "\n"
	inventory := ""
	for _, it := range w.Items {
		if it.Location == models.Carried && it.Text != "" {
			inventory += "- " + it.Text + "\n"
		}
	}
	if inventory == "" {
		inventory = "(empty)"
	}

	content := title + location + invTitle + inventory

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

// Run plays w in the terminal until the player quits. The engine sinks in
// opts are replaced by the terminal's own.
func Run(w *models.World, opts engine.Options, saveDir string) error {
	m := newGame(w, opts, saveDir)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.screen.closeScript()
	return err
}

// newGame starts w with the terminal as the engine's sinks.
func newGame(w *models.World, opts engine.Options, saveDir string) model {
	scr := &screen{}
	opts.Output, opts.Look, opts.Effects = scr, scr, scr
	eng := engine.New(w, opts)
	scr.eng = eng
	eng.Prologue()
	return newModel(eng, scr, saveDir)
}

// entry is one block of the scrollback.
type entry struct {
	user bool
	text string
}

// screen collects what the engine prints between two key presses. It is the
// engine's output, look and effect sink.
type screen struct {
	eng     *engine.Engine
	entries []entry
	text    strings.Builder
	room    string
	effects []engine.Effect
	script  *os.File
}

func (s *screen) Emit(text string) {
	s.text.WriteString(text)
	if s.script != nil {
		if _, err := s.script.WriteString(text); err != nil {
			log.Warnf("tui: transcript: %v", err)
		}
	}
}

func (s *screen) Refresh(*models.World) {
	if s.eng != nil {
		s.room = s.eng.RoomDescription()
	}
}

// Effect clears the screen at once; the other effects wait for the end of
// the turn.
func (s *screen) Effect(e engine.Effect) {
	if e == engine.EffectClearScreen || e == engine.EffectRestart {
		s.clear()
		return
	}
	s.effects = append(s.effects, e)
}

func (s *screen) takeEffects() []engine.Effect {
	out := s.effects
	s.effects = nil
	return out
}

func (s *screen) flush() {
	if s.text.Len() > 0 {
		s.entries = append(s.entries, entry{text: s.text.String()})
		s.text.Reset()
	}
}

func (s *screen) user(input string) {
	s.flush()
	s.entries = append(s.entries, entry{user: true, text: "> " + input})
	if s.script != nil {
		fmt.Fprintf(s.script, "> %s\n", input)
	}
}

func (s *screen) clear() {
	s.entries = nil
	s.text.Reset()
}

func (s *screen) render(width int) string {
	s.flush()
	var b strings.Builder
	for _, e := range s.entries {
		if e.user {
			b.WriteString("\n" + userStyle.Width(width).Render(e.text) + "\n\n")
			continue
		}
		b.WriteString(gameStyle.Width(width).Render(strings.TrimRight(e.text, "\n")) + "\n")
	}
	return b.String()
}

func (s *screen) openScript(path string) error {
	s.closeScript()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	s.script = f
	return nil
}

func (s *screen) closeScript() {
	if s.script != nil {
		s.script.Close()
		s.script = nil
	}
}
