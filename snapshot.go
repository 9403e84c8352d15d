package gridseq

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type (
	// Snapshot is the serializable form of a Pattern, used by the editor
	// for save/load and by plugin hosts for state chunks. Only the
	// activated cells are stored, one row of pitches per step.
	Snapshot struct {
		Length       int        `yaml:"length" json:"length"`
		PitchOffset  int        `yaml:"pitchoffset" json:"pitchoffset"`
		HardwarePage int        `yaml:"hardwarepage,omitempty" json:"hardwarepage,omitempty"`
		Steps        []StepCell `yaml:"steps" json:"steps"`
	}

	// StepCell lists the active pitches of one step column.
	StepCell struct {
		Step    int   `yaml:"step" json:"step"`
		Pitches []int `yaml:"pitches,flow" json:"pitches"`
	}
)

// Snapshot captures the pattern content and viewport state.
func (p *Pattern) Snapshot() Snapshot {
	s := Snapshot{
		Length:       p.length,
		PitchOffset:  p.pitchOffset,
		HardwarePage: p.hardwarePage,
	}
	for x := 0; x < MaxSteps; x++ {
		var pitches []int
		for pitch := 0; pitch < PitchRange; pitch++ {
			if p.Cell(x, pitch) {
				pitches = append(pitches, pitch)
			}
		}
		if pitches != nil {
			s.Steps = append(s.Steps, StepCell{Step: x, Pitches: pitches})
		}
	}
	return s
}

// Apply replaces the pattern content and viewport state with the
// snapshot's. Out-of-range values are clamped or skipped the same way
// live inputs are.
func (s Snapshot) Apply(p *Pattern) {
	p.ClearAll()
	p.SetLength(s.Length)
	p.SetPitchOffset(s.PitchOffset)
	p.hardwarePage = 0
	p.SetHardwarePage(s.HardwarePage)
	for _, sc := range s.Steps {
		for _, pitch := range sc.Pitches {
			p.Toggle(sc.Step, pitch)
		}
	}
}

// ReadSnapshot parses a snapshot from r, accepting either JSON or YAML.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	var s Snapshot
	if errJSON := json.Unmarshal(b, &s); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &s); errYaml != nil {
			return Snapshot{}, fmt.Errorf("unmarshaling snapshot: %v / %v", errYaml, errJSON)
		}
	}
	return s, nil
}

// WriteSnapshot writes the snapshot to w as YAML.
func (s Snapshot) WriteSnapshot(w io.Writer) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
