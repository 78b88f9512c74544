package tui

import (
	"fmt"
	"strings"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

// tableRowsOffset is the number of lines PrintApertures writes before the
// first aperture row.
const tableRowsOffset = 3

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("MPFS memory apertures"))
	b.WriteString("\n")
	b.WriteString(tableStyle.Render(m.renderTable()))
	b.WriteString("\n")

	if regs, err := m.board.Registers(); err == nil {
		b.WriteString(segStyle.Render(printer.FormatSegs(regs)))
	} else {
		b.WriteString(errorStyle.Render(err.Error()))
	}
	b.WriteString("\n\n")

	b.WriteString(promptStyle.Render(m.prompt))
	b.WriteString("\n")
	if m.stage != StageSelect {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.errMessage != "" {
		b.WriteString(errorStyle.Render(m.errMessage))
		b.WriteString("\n")
	}
	if m.statusMessage != "" {
		b.WriteString(statusStyle.Render(m.statusMessage))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderTable prints the aperture table and marks the selected row.
func (m Model) renderTable() string {
	var buf strings.Builder
	p := printer.New(geometry.MPFS(), &buf, printer.DefaultOptions())
	if err := p.PrintApertures(m.board); err != nil {
		return err.Error()
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		row := i - tableRowsOffset
		switch {
		case row < 0:
			lines[i] = "     " + line
		case row == m.cursor && m.stage != StageMemory:
			lines[i] = selectedStyle.Render(fmt.Sprintf("> %d  %s", row, line))
		default:
			lines[i] = fmt.Sprintf("  %d  %s", row, line)
		}
	}
	return strings.Join(lines, "\n")
}
