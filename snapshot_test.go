package gridseq_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gridseq/gridseq"
)

func TestSnapshotRoundTrip(t *testing.T) {
	p := gridseq.NewPattern()
	p.SetLength(12)
	p.SetPitchOffset(48)
	p.SetHardwarePage(1)
	p.Toggle(0, 36)
	p.Toggle(3, 48)
	p.Toggle(11, 127)

	var buf bytes.Buffer
	if err := p.Snapshot().WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	s, err := gridseq.ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	q := gridseq.NewPattern()
	s.Apply(&q)
	if q.Length() != 12 || q.PitchOffset() != 48 || q.HardwarePage() != 1 {
		t.Errorf("viewport state lost: %d %d %d", q.Length(), q.PitchOffset(), q.HardwarePage())
	}
	for _, c := range [][2]int{{0, 36}, {3, 48}, {11, 127}} {
		if !q.Cell(c[0], c[1]) {
			t.Errorf("cell (%d,%d) lost in round trip", c[0], c[1])
		}
	}
	if q.Cell(1, 36) {
		t.Errorf("spurious cell after round trip")
	}
}

func TestReadSnapshotJSON(t *testing.T) {
	s, err := gridseq.ReadSnapshot(strings.NewReader(
		`{"length": 4, "pitchoffset": 60, "steps": [{"step": 2, "pitches": [60, 64]}]}`))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	p := gridseq.NewPattern()
	s.Apply(&p)
	if p.Length() != 4 || !p.Cell(2, 60) || !p.Cell(2, 64) {
		t.Errorf("JSON snapshot not applied: length %d", p.Length())
	}
}

func TestSnapshotApplyClampsBadValues(t *testing.T) {
	s := gridseq.Snapshot{
		Length:      99,
		PitchOffset: 999,
		Steps:       []gridseq.StepCell{{Step: 40, Pitches: []int{300}}},
	}
	p := gridseq.NewPattern()
	s.Apply(&p)
	if p.Length() != gridseq.MaxSteps {
		t.Errorf("length not clamped: %d", p.Length())
	}
	if p.PitchOffset() != gridseq.MaxPitchOffset {
		t.Errorf("pitch offset not clamped: %d", p.PitchOffset())
	}
}
