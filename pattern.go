package gridseq

import "math/bits"

// Pattern is the editable musical content: a MaxSteps x PitchRange grid
// of booleans plus the viewport state (pitch offset, hardware page) and
// the sequence length. Each column is stored as a 128-bit set, so the
// whole grid is 256 bytes and toggling, packing and clearing are all
// fixed-size bit operations.
//
// Pattern is owned by whoever runs the sequencer tick; it is not safe
// for concurrent use.
type Pattern struct {
	grid         [MaxSteps][2]uint64
	length       int
	pitchOffset  int
	hardwarePage int
}

// NewPattern returns a pattern with the default length and pitch offset
// and an empty grid.
func NewPattern() Pattern {
	return Pattern{length: DefaultLength, pitchOffset: DefaultPitchOffset}
}

// Toggle flips the cell at (step, pitch) and reports whether a change
// occurred. Out-of-range coordinates are a no-op.
func (p *Pattern) Toggle(step, pitch int) bool {
	if step < 0 || step >= MaxSteps || pitch < 0 || pitch >= PitchRange {
		return false
	}
	p.grid[step][pitch>>6] ^= 1 << uint(pitch&63)
	return true
}

// Cell returns the cell at (step, pitch); false for out-of-range
// coordinates.
func (p *Pattern) Cell(step, pitch int) bool {
	if step < 0 || step >= MaxSteps || pitch < 0 || pitch >= PitchRange {
		return false
	}
	return p.grid[step][pitch>>6]&(1<<uint(pitch&63)) != 0
}

// ClearAll sets every cell to false. Length, pitch offset and hardware
// page are left untouched.
func (p *Pattern) ClearAll() {
	for i := range p.grid {
		p.grid[i] = [2]uint64{}
	}
}

// SetLength stores the sequence length, clamped to [MinLength, MaxSteps].
// Columns beyond the length keep their cells; restoring the length
// restores the content. Shrinking to one page pulls the hardware view
// back to page 0, as page 1 no longer exists.
func (p *Pattern) SetLength(n int) {
	if n < MinLength {
		n = MinLength
	} else if n > MaxSteps {
		n = MaxSteps
	}
	p.length = n
	if p.hardwarePage == 1 && n <= VisibleCols {
		p.hardwarePage = 0
	}
}

// Length returns the number of columns that participate in playback.
func (p *Pattern) Length() int { return p.length }

// SetPitchOffset stores the bottom row of the viewport, clamped to
// [0, MaxPitchOffset].
func (p *Pattern) SetPitchOffset(o int) {
	if o < 0 {
		o = 0
	} else if o > MaxPitchOffset {
		o = MaxPitchOffset
	}
	p.pitchOffset = o
}

// PitchOffset returns the bottom row of the viewport.
func (p *Pattern) PitchOffset() int { return p.pitchOffset }

// SetHardwarePage selects which 8-column slice the hardware device
// views. Page 1 is only reachable while the sequence is longer than one
// page; the call reports whether the page was accepted.
func (p *Pattern) SetHardwarePage(page int) bool {
	if page != 0 && page != 1 {
		return false
	}
	if page == 1 && p.length <= VisibleCols {
		return false
	}
	p.hardwarePage = page
	return true
}

// HardwarePage returns the current hardware page, 0 or 1.
func (p *Pattern) HardwarePage() int { return p.hardwarePage }

// RangeColumn calls yield for every active pitch in column step, in
// ascending order. It does not allocate.
func (p *Pattern) RangeColumn(step int, yield func(pitch int)) {
	if step < 0 || step >= MaxSteps {
		return
	}
	for w, word := range p.grid[step] {
		for word != 0 {
			yield(w<<6 + bits.TrailingZeros64(word))
			word &= word - 1
		}
	}
}

// PackVisibleRow packs the visible 8-row slice of column x into a byte:
// bit y is set iff the cell at (x, pitchOffset+y) is set. Defined for
// all x in [0, MaxSteps).
func (p *Pattern) PackVisibleRow(x int) byte {
	if x < 0 || x >= MaxSteps {
		return 0
	}
	// the 8 rows starting at pitchOffset never straddle more than two
	// words, and for offsets <= 56 resp. >= 64 just one
	lo := p.grid[x][p.pitchOffset>>6] >> uint(p.pitchOffset&63)
	if s := p.pitchOffset & 63; s > 64-VisibleRows && p.pitchOffset < 64 {
		lo |= p.grid[x][1] << uint(64-s)
	}
	return byte(lo)
}
