package editor

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gridseq/gridseq"
	"github.com/gridseq/gridseq/engine"
)

// Model is the bubbletea model of the editor.
type Model struct {
	broker   *Broker
	status   Status
	cursorX  int
	cursorY  int
	filter   bool
	filePath string
	note     string
	width    int
	height   int
}

type (
	statusMsg Status
	noteMsg   string
)

// NewModel creates an editor talking through the given broker.
// filePath, if non-empty, is where save/load operate.
func NewModel(broker *Broker, filePath string) Model {
	return Model{
		broker:   broker,
		cursorY:  0,
		filePath: filePath,
		status:   Status{Length: gridseq.DefaultLength, PitchOffset: gridseq.DefaultPitchOffset},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.waitStatus())
}

// waitStatus forwards the next Status from the host into the bubbletea
// loop.
func (m Model) waitStatus() tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-m.broker.ToEditor)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case statusMsg:
		m.status = Status(msg)
		return m, m.waitStatus()

	case noteMsg:
		m.note = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < gridseq.MaxSteps-1 {
			m.cursorX++
		}
	case "up", "k":
		if m.cursorY < gridseq.VisibleRows-1 {
			m.cursorY++
		}
	case "down", "j":
		if m.cursorY > 0 {
			m.cursorY--
		}

	case " ":
		TrySend(m.broker.ToHost, any(GridMsg{X: m.cursorX, Y: m.cursorY}))
	case "c":
		TrySend(m.broker.ToHost, any(SentinelMsg{Value: engine.SentinelClear}))
	case "r":
		TrySend(m.broker.ToHost, any(SentinelMsg{Value: engine.SentinelReset}))
		m.note = "controller reset"
	case "i":
		TrySend(m.broker.ToHost, any(SentinelMsg{Value: engine.SentinelInquiry}))
		m.note = "device inquiry sent"
	case "o":
		TrySend(m.broker.ToHost, any(SentinelMsg{Value: engine.SentinelRecenter}))

	case "[":
		TrySend(m.broker.ToHost, any(LengthMsg{Length: m.status.Length - 1}))
	case "]":
		TrySend(m.broker.ToHost, any(LengthMsg{Length: m.status.Length + 1}))

	case "f":
		m.filter = !m.filter
		TrySend(m.broker.ToHost, any(FilterMsg{On: m.filter}))

	case "enter", "p":
		TrySend(m.broker.ToHost, any(PlayMsg{On: !m.status.Playing}))

	case "s":
		return m, m.save()
	case "L":
		return m, m.load()
	}
	return m, nil
}

// save asks the host for a snapshot and writes it to the file path.
func (m Model) save() tea.Cmd {
	broker, path := m.broker, m.filePath
	return func() tea.Msg {
		if path == "" {
			return noteMsg("no file path; start with -file")
		}
		reply := make(chan gridseq.Snapshot, 1)
		if !TrySend(broker.ToHost, any(SaveRequestMsg{Reply: reply})) {
			return noteMsg("host busy, not saved")
		}
		select {
		case snapshot := <-reply:
			f, err := os.Create(path)
			if err != nil {
				return noteMsg(fmt.Sprintf("save: %v", err))
			}
			defer f.Close()
			if err := snapshot.WriteSnapshot(f); err != nil {
				return noteMsg(fmt.Sprintf("save: %v", err))
			}
			return noteMsg("saved " + path)
		case <-time.After(time.Second):
			return noteMsg("host did not answer, not saved")
		}
	}
}

// load reads the snapshot file and hands it to the host.
func (m Model) load() tea.Cmd {
	broker, path := m.broker, m.filePath
	return func() tea.Msg {
		if path == "" {
			return noteMsg("no file path; start with -file")
		}
		f, err := os.Open(path)
		if err != nil {
			return noteMsg(fmt.Sprintf("load: %v", err))
		}
		defer f.Close()
		snapshot, err := gridseq.ReadSnapshot(f)
		if err != nil {
			return noteMsg(fmt.Sprintf("load: %v", err))
		}
		TrySend(broker.ToHost, any(LoadMsg{Snapshot: snapshot}))
		return noteMsg("loaded " + path)
	}
}
