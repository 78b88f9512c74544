package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/mpfs"
)

// TestHelper drives a Model without a terminal
type TestHelper struct {
	model  Model
	copied []string
	cmd    tea.Cmd
}

// NewTestHelper creates a test helper editing the default board
func NewTestHelper() *TestHelper {
	h := &TestHelper{}
	h.model = NewModel(mpfs.DefaultBoard())
	h.model.copy = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	return h
}

func (h *TestHelper) send(msg tea.Msg) *TestHelper {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	h.cmd = cmd
	return h
}

// SendKey simulates a special key press
func (h *TestHelper) SendKey(keyType tea.KeyType) *TestHelper {
	return h.send(tea.KeyMsg{Type: keyType})
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type enters s one character at a time
func (h *TestHelper) Type(s string) *TestHelper {
	for _, r := range s {
		h.SendKeyRune(r)
	}
	return h
}

// Submit types s and presses enter
func (h *TestHelper) Submit(s string) *TestHelper {
	return h.Type(s).SendKey(tea.KeyEnter)
}

// RunCmd executes the last returned command and feeds its message back,
// as the bubbletea runtime would. Tick commands are not run.
func (h *TestHelper) RunCmd() *TestHelper {
	if h.cmd == nil {
		return h
	}
	return h.send(h.cmd())
}

// GetModel returns the current model
func (h *TestHelper) GetModel() Model {
	return h.model
}

// GetView returns the rendered view
func (h *TestHelper) GetView() string {
	return h.model.View()
}
