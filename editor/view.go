package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridseq/gridseq"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	inertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(pitch int) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

// View implements tea.Model. Rows render top-down so higher pitches sit
// higher on screen, matching the hardware orientation.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gridseq"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  step %2d/%d  tempo %.0f  %s",
		m.status.CurrentStep+1, m.status.Length, m.status.Tempo, playState(m.status.Playing))))
	b.WriteString("\n\n")

	for y := gridseq.VisibleRows - 1; y >= 0; y-- {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%4s ", noteName(m.status.PitchOffset+y))))
		for x := 0; x < gridseq.MaxSteps; x++ {
			active := m.status.Rows[x]&(1<<uint(y)) != 0
			cell := "· "
			style := inertStyle
			switch {
			case active && x == m.status.CurrentStep && m.status.Playing:
				cell, style = "█ ", playheadStyle
			case active:
				cell, style = "█ ", activeStyle
			case x == m.status.CurrentStep && m.status.Playing:
				style = playheadStyle
			case x < m.status.Length:
				style = labelStyle
			}
			if x == m.cursorX && y == m.cursorY {
				b.WriteString(cursorStyle.Render("[" + strings.TrimRight(cell, " ") + "]"))
			} else {
				b.WriteString(style.Render(" " + cell))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	filter := "off"
	if m.filter {
		filter = "on"
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("filter %s   %s", filter, m.note)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(
		"arrows move · space toggle · p play/stop · [/] length · f filter · c clear · o recenter · r reset pad · i inquiry · s/L save/load · q quit"))
	return b.String()
}

func playState(playing bool) string {
	if playing {
		return "playing"
	}
	return "stopped"
}
