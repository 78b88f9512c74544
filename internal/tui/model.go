// Package tui is the interactive aperture editor: set the amount of
// system memory, pick an aperture, move its hardware start address and
// watch the segment registers follow.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ConchuOD/memory-aperature-configurator/internal/logger"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/mpfs"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

// Stage is the question the editor is currently asking.
type Stage int

const (
	StageMemory  Stage = iota // waiting for total system memory
	StageSelect               // choosing an aperture
	StageAddress              // waiting for a new hardware start address
)

func (s Stage) String() string {
	switch s {
	case StageMemory:
		return "memory"
	case StageSelect:
		return "select"
	case StageAddress:
		return "address"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

type clearStatusMsg struct{}

// segsCopiedMsg reports the result of a clipboard write.
type segsCopiedMsg struct {
	Text string
	Err  error
}

// statusTimeout is how long a status message stays on screen.
const statusTimeout = 2 * time.Second

// Model is the bubbletea model for the editor.
type Model struct {
	board *mpfs.Board
	keys  KeyMap
	help  help.Model
	input textinput.Model

	stage  Stage
	cursor int

	prompt        string
	errMessage    string
	statusMessage string
	showHelp      bool

	width  int
	height int

	// copy writes to the system clipboard; tests replace it.
	copy func(string) error
}

// NewModel returns an editor for b, asking first for system memory.
// The model edits b in place.
func NewModel(b *mpfs.Board) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 18
	ti.Focus()

	m := Model{
		board: b,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		input: ti,
		copy:  clipboard.WriteAll,
	}
	return m.enter(StageMemory)
}

// Board returns the board being edited.
func (m Model) Board() *mpfs.Board { return m.board }

// Stage returns the current stage.
func (m Model) Stage() Stage { return m.stage }

// Cursor returns the selected aperture index.
func (m Model) Cursor() int { return m.cursor }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// enter switches stage, resetting the prompt and input.
func (m Model) enter(s Stage) Model {
	logger.Debug("editor stage", "from", m.stage, "to", s)
	m.stage = s
	m.input.SetValue("")
	switch s {
	case StageMemory:
		m.prompt = "Enter total system memory in hex:"
		m.input.Placeholder = fmt.Sprintf("%#x", m.board.TotalSystemMemory)
	case StageSelect:
		m.prompt = "Select an aperture to edit:"
	case StageAddress:
		a := m.board.Apertures[m.cursor]
		m.prompt = fmt.Sprintf("Set hardware start address for %s:", a.Description)
		m.input.Placeholder = fmt.Sprintf("%#x", a.HardwareAddr)
	}
	return m
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil

	case segsCopiedMsg:
		if msg.Err != nil {
			logger.Warn("clipboard write failed", "error", msg.Err)
			m.statusMessage = "Failed to copy segment registers"
		} else {
			m.statusMessage = "✓ Copied: " + msg.Text
		}
		return m, clearStatusAfter(statusTimeout)

	case tea.KeyMsg:
		if m.stage == StageSelect {
			return m.handleSelect(msg)
		}
		return m.handleInput(msg)
	}

	if m.stage != StageSelect {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.board.Apertures)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		m.errMessage = ""
		return m.enter(StageAddress), nil
	case key.Matches(msg, m.keys.Memory):
		m.errMessage = ""
		return m.enter(StageMemory), nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySegs()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9':
		id := int(msg.Runes[0] - '0')
		if id >= len(m.board.Apertures) {
			m.errMessage = fmt.Sprintf("Invalid aperture ID %d", id)
			return m, nil
		}
		m.errMessage = ""
		m.cursor = id
	}
	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.errMessage = ""
		return m.enter(StageSelect), nil
	case tea.KeyEnter:
		if m.stage == StageMemory {
			return m.submitMemory()
		}
		return m.submitAddress()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitMemory accepts a new system memory size. An empty line keeps the
// current value.
func (m Model) submitMemory() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		m.errMessage = ""
		return m.enter(StageSelect), nil
	}
	v, err := parseHex(raw)
	if err != nil || v == 0 {
		m.errMessage = fmt.Sprintf("Invalid amount of system memory (%s). Please enter a hex number", raw)
		m.input.SetValue("")
		return m, nil
	}
	logger.Info("system memory set", "bytes", v)
	m.board.TotalSystemMemory = v
	m.errMessage = ""
	return m.enter(StageSelect), nil
}

// submitAddress moves the selected aperture. Rejected addresses leave the
// board untouched and ask again.
func (m Model) submitAddress() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	v, err := parseHex(raw)
	if err != nil {
		m.errMessage = fmt.Sprintf("Invalid address (%s). Please enter a hex number", raw)
		return m, nil
	}

	a := &m.board.Apertures[m.cursor]
	prev := a.HardwareAddr
	if err := m.board.SetHWStartByID(m.cursor, v); err != nil {
		m.errMessage = "Failed setting hardware start address: requested address was " +
			"greater than the total system memory. Try again"
		return m, nil
	}
	seg, err := a.Seg()
	if err != nil {
		a.HardwareAddr = prev
		m.errMessage = fmt.Sprintf("Cannot reach %#x from %#x: %v", v, a.BusAddr, err)
		return m, nil
	}

	logger.Info("aperture moved", "aperture", a.RegName, "hw_start", v, "seg", seg)
	m.errMessage = ""
	m.statusMessage = fmt.Sprintf("%s = %#x", a.RegName, seg)
	return m.enter(StageSelect), clearStatusAfter(statusTimeout)
}

func (m Model) copySegs() tea.Cmd {
	regs, err := m.board.Registers()
	write := m.copy
	return func() tea.Msg {
		if err != nil {
			return segsCopiedMsg{Err: err}
		}
		text := printer.FormatSegs(regs)
		return segsCopiedMsg{Text: text, Err: write(text)}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// parseHex reads a hex number with or without a 0x prefix.
func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, "_", "")
	return strconv.ParseUint(s, 16, 64)
}

// Run starts the editor on b and blocks until the user quits. It returns
// the edited board.
func Run(b *mpfs.Board, opts ...tea.ProgramOption) (*mpfs.Board, error) {
	final, err := tea.NewProgram(NewModel(b), opts...).Run()
	if err != nil {
		return b, err
	}
	return final.(Model).Board(), nil
}
