package styles

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidRange is returned for bounds outside the document or start >= end.
	ErrInvalidRange = errors.New("invalid range")
	// ErrEmptyAttribute is returned when a partial attribute sets no axis.
	ErrEmptyAttribute = errors.New("attribute sets no axis")
)

// Range is a half-open character interval carrying a partial attribute.
// Seq is the creation order; later ranges win per axis.
type Range struct {
	Start int
	End   int
	Attr  Partial
	Seq   uint64
}

// Run is a maximal span of uniformly resolved formatting.
type Run struct {
	Start int
	End   int
	Attr  Attribute
}

// Model owns the formatting of one text document. Ranges are kept in
// creation order and are never merged, only shadowed, clipped or dropped.
type Model struct {
	defaults Attribute
	length   int
	ranges   []Range
	seq      uint64
}

// New creates a model for a document of the given length.
func New(defaults Attribute, length int) *Model {
	if length < 0 {
		length = 0
	}
	return &Model{defaults: defaults, length: length}
}

// Len returns the document length the model tracks.
func (m *Model) Len() int { return m.length }

// Defaults returns the document default attribute.
func (m *Model) Defaults() Attribute { return m.defaults }

func (m *Model) validate(start, end int) error {
	if start < 0 || end > m.length || start >= end {
		return fmt.Errorf("%w: [%d,%d) in document of length %d", ErrInvalidRange, start, end, m.length)
	}
	return nil
}

// ApplyAttribute records a new range over [start,end). When p sets any
// character format axis, the range carries the whole format resolved at start
// with p on top, so the span takes start's format. Highlight is its own axis
// and is only carried when p sets it.
func (m *Model) ApplyAttribute(start, end int, p Partial) (Range, error) {
	if err := m.validate(start, end); err != nil {
		return Range{}, err
	}
	if p.IsEmpty() {
		return Range{}, ErrEmptyAttribute
	}

	attr := p
	if !p.WithoutHighlight().IsEmpty() {
		attr = FormatOf(m.ResolvedAttributeAt(start)).Merge(p)
	}

	m.seq++
	r := Range{Start: start, End: end, Attr: attr, Seq: m.seq}
	m.ranges = append(m.ranges, r)
	return r, nil
}

// ResolvedAttributeAt walks the ranges covering offset in creation order and
// overlays their axes onto the document default.
func (m *Model) ResolvedAttributeAt(offset int) Attribute {
	a := m.defaults
	if a.Highlight != nil {
		c := *a.Highlight
		a.Highlight = &c
	}
	for _, r := range m.ranges {
		if r.Start <= offset && offset < r.End {
			a = r.Attr.ApplyTo(a)
		}
	}
	return a
}

// ToggleBold flips the weight axis relative to the format resolved at start.
func (m *Model) ToggleBold(start, end int) error {
	w := WeightBold
	if m.ResolvedAttributeAt(start).Bold() {
		w = WeightNormal
	}
	_, err := m.ApplyAttribute(start, end, WithWeight(w))
	return err
}

// ToggleItalic flips the slant axis relative to the format resolved at start.
func (m *Model) ToggleItalic(start, end int) error {
	s := SlantItalic
	if m.ResolvedAttributeAt(start).Italic() {
		s = SlantRoman
	}
	_, err := m.ApplyAttribute(start, end, WithSlant(s))
	return err
}

// ToggleUnderline flips the underline axis relative to the format resolved at start.
func (m *Model) ToggleUnderline(start, end int) error {
	on := !m.ResolvedAttributeAt(start).Underline
	_, err := m.ApplyAttribute(start, end, WithUnderline(on))
	return err
}

// RemoveHighlight clips [start,end) out of every range that sets the
// highlight axis. Remainders keep their attribute and creation order; the
// clipped middle survives without the highlight axis when it set others.
// It returns the number of ranges that were clipped.
func (m *Model) RemoveHighlight(start, end int) (int, error) {
	if err := m.validate(start, end); err != nil {
		return 0, err
	}

	clipped := 0
	out := make([]Range, 0, len(m.ranges))
	for _, r := range m.ranges {
		if !r.Attr.HasHighlight() || r.End <= start || r.Start >= end {
			out = append(out, r)
			continue
		}
		clipped++

		if r.Start < start {
			left := r
			left.End = start
			out = append(out, left)
		}
		if rest := r.Attr.WithoutHighlight(); !rest.IsEmpty() {
			mid := r
			mid.Start = max(r.Start, start)
			mid.End = min(r.End, end)
			mid.Attr = rest
			out = append(out, mid)
		}
		if r.End > end {
			right := r
			right.Start = end
			out = append(out, right)
		}
	}
	m.ranges = out
	return clipped, nil
}

// ShiftAfterEdit keeps ranges attached to their text after delta characters
// were inserted (delta > 0) or deleted (delta < 0) at offset.
//
// Insertion: ranges starting at or after offset move; a range straddling
// offset grows. Deletion of [offset, offset-delta): covered ranges are
// dropped, partially covered ones truncated, later ones move back.
func (m *Model) ShiftAfterEdit(offset, delta int) error {
	if delta == 0 {
		return nil
	}
	if offset < 0 || offset > m.length || (delta < 0 && offset-delta > m.length) {
		return fmt.Errorf("%w: edit at %d by %d in document of length %d", ErrInvalidRange, offset, delta, m.length)
	}

	out := m.ranges[:0]
	if delta > 0 {
		for _, r := range m.ranges {
			switch {
			case r.Start >= offset:
				r.Start += delta
				r.End += delta
			case r.End > offset:
				r.End += delta
			}
			out = append(out, r)
		}
	} else {
		delEnd := offset - delta
		mapPos := func(x int) int {
			switch {
			case x <= offset:
				return x
			case x >= delEnd:
				return x + delta
			default:
				return offset
			}
		}
		for _, r := range m.ranges {
			r.Start, r.End = mapPos(r.Start), mapPos(r.End)
			if r.Start >= r.End {
				continue
			}
			out = append(out, r)
		}
	}
	m.ranges = out
	m.length += delta
	return nil
}

// Ranges returns a copy of the ranges in creation order.
func (m *Model) Ranges() []Range {
	out := make([]Range, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// Snapshot captures the model state for undo.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{ranges: m.Ranges(), length: m.length}
}

// Restore rewinds the model to a snapshot. The sequence counter keeps
// growing so ranges created afterwards still win.
func (m *Model) Restore(s Snapshot) {
	m.ranges = make([]Range, len(s.ranges))
	copy(m.ranges, s.ranges)
	m.length = s.length
}

// Snapshot is an opaque copy of the model's ranges.
type Snapshot struct {
	ranges []Range
	length int
}

// Runs splits the document into maximal spans of identical resolved
// formatting. An empty document yields no runs.
func (m *Model) Runs() []Run {
	if m.length == 0 {
		return nil
	}

	cuts := map[int]struct{}{0: {}, m.length: {}}
	for _, r := range m.ranges {
		cuts[r.Start] = struct{}{}
		cuts[r.End] = struct{}{}
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	var runs []Run
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		attr := m.ResolvedAttributeAt(start)
		if n := len(runs); n > 0 && runs[n-1].Attr.Equal(attr) {
			runs[n-1].End = end
			continue
		}
		runs = append(runs, Run{Start: start, End: end, Attr: attr})
	}
	return runs
}
