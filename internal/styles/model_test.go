package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Attribute {
	return Attribute{Family: "Arial", SizePt: 10}
}

func TestResolvedAttributeAt_LaterRangeWins(t *testing.T) {
	m := New(defaults(), 20)

	_, err := m.ApplyAttribute(0, 5, WithWeight(WeightBold))
	require.NoError(t, err)
	_, err = m.ApplyAttribute(2, 8, WithWeight(WeightNormal))
	require.NoError(t, err)

	assert.True(t, m.ResolvedAttributeAt(0).Bold())
	assert.False(t, m.ResolvedAttributeAt(3).Bold())
	assert.False(t, m.ResolvedAttributeAt(7).Bold())
	assert.False(t, m.ResolvedAttributeAt(8).Bold())
}

func TestApplyAttribute_MergesOntoFormatAtStart(t *testing.T) {
	m := New(defaults(), 20)

	_, err := m.ApplyAttribute(0, 10, WithSlant(SlantItalic))
	require.NoError(t, err)
	_, err = m.ApplyAttribute(5, 15, WithWeight(WeightBold))
	require.NoError(t, err)

	at7 := m.ResolvedAttributeAt(7)
	assert.True(t, at7.Italic(), "bold range must not reset italic")
	assert.True(t, at7.Bold())
	assert.Equal(t, "Arial", at7.Family)

	at12 := m.ResolvedAttributeAt(12)
	assert.True(t, at12.Italic(), "format at start spreads over the whole range")
	assert.True(t, at12.Bold())

	assert.False(t, m.ResolvedAttributeAt(15).Bold())
	assert.False(t, m.ResolvedAttributeAt(15).Italic())
}

func TestToggleItalic_OverPartlyBoldSpan(t *testing.T) {
	m := New(defaults(), 20)
	require.NoError(t, m.ToggleBold(0, 5))
	require.NoError(t, m.ToggleItalic(3, 8))

	for _, off := range []int{3, 4, 5, 6, 7} {
		at := m.ResolvedAttributeAt(off)
		assert.True(t, at.Bold(), "offset %d", off)
		assert.True(t, at.Italic(), "offset %d", off)
	}
	assert.True(t, m.ResolvedAttributeAt(2).Bold())
	assert.False(t, m.ResolvedAttributeAt(2).Italic())
	assert.False(t, m.ResolvedAttributeAt(8).Bold())
}

func TestApplyAttribute_HighlightStaysSeparate(t *testing.T) {
	m := New(defaults(), 10)
	_, err := m.ApplyAttribute(0, 10, WithHighlight(Yellow))
	require.NoError(t, err)
	r, err := m.ApplyAttribute(0, 4, WithWeight(WeightBold))
	require.NoError(t, err)
	assert.Nil(t, r.Attr.Highlight, "format ranges do not copy the highlight")

	_, err = m.ApplyAttribute(4, 10, WithHighlight(Pink))
	require.NoError(t, err)
	ranges := m.Ranges()
	assert.Nil(t, ranges[2].Attr.Weight, "highlight ranges carry no format")
	assert.True(t, m.ResolvedAttributeAt(1).Bold())
	assert.Equal(t, Yellow, *m.ResolvedAttributeAt(1).Highlight)
	assert.Equal(t, Pink, *m.ResolvedAttributeAt(6).Highlight)
}

func TestResolvedAttributeAt_DefaultsWhenUncovered(t *testing.T) {
	m := New(defaults(), 10)
	assert.Equal(t, defaults(), m.ResolvedAttributeAt(4))
	assert.Equal(t, defaults(), m.ResolvedAttributeAt(-1))
}

func TestApplyAttribute_Validation(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		attr       Partial
		wantErr    error
	}{
		{name: "start equals end", start: 3, end: 3, attr: WithWeight(WeightBold), wantErr: ErrInvalidRange},
		{name: "start after end", start: 5, end: 2, attr: WithWeight(WeightBold), wantErr: ErrInvalidRange},
		{name: "negative start", start: -1, end: 2, attr: WithWeight(WeightBold), wantErr: ErrInvalidRange},
		{name: "end past length", start: 0, end: 11, attr: WithWeight(WeightBold), wantErr: ErrInvalidRange},
		{name: "empty partial", start: 0, end: 5, attr: Partial{}, wantErr: ErrEmptyAttribute},
		{name: "whole document", start: 0, end: 10, attr: WithUnderline(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(defaults(), 10)
			_, err := m.ApplyAttribute(tt.start, tt.end, tt.attr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, m.Ranges(), "rejected input must not mutate")
				return
			}
			require.NoError(t, err)
			assert.Len(t, m.Ranges(), 1)
		})
	}
}

func TestToggle_FlipsRelativeToStart(t *testing.T) {
	m := New(defaults(), 10)

	require.NoError(t, m.ToggleBold(0, 10))
	assert.True(t, m.ResolvedAttributeAt(5).Bold())

	require.NoError(t, m.ToggleBold(2, 4))
	assert.False(t, m.ResolvedAttributeAt(3).Bold())
	assert.True(t, m.ResolvedAttributeAt(5).Bold())

	require.NoError(t, m.ToggleItalic(0, 3))
	assert.True(t, m.ResolvedAttributeAt(1).Italic())

	require.NoError(t, m.ToggleUnderline(0, 1))
	assert.True(t, m.ResolvedAttributeAt(0).Underline)
	require.NoError(t, m.ToggleUnderline(0, 1))
	assert.False(t, m.ResolvedAttributeAt(0).Underline)
}

func TestRemoveHighlight_SplitsRemainders(t *testing.T) {
	m := New(defaults(), 30)
	_, err := m.ApplyAttribute(0, 20, WithHighlight(Yellow))
	require.NoError(t, err)

	n, err := m.RemoveHighlight(5, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ranges := m.Ranges()
	require.Len(t, ranges, 2)
	assert.Equal(t, 0, ranges[0].Start)
	assert.Equal(t, 5, ranges[0].End)
	assert.Equal(t, 10, ranges[1].Start)
	assert.Equal(t, 20, ranges[1].End)
	assert.Equal(t, ranges[0].Seq, ranges[1].Seq)
	assert.Equal(t, Yellow, *ranges[1].Attr.Highlight)

	assert.NotNil(t, m.ResolvedAttributeAt(4).Highlight)
	assert.Nil(t, m.ResolvedAttributeAt(5).Highlight)
	assert.Nil(t, m.ResolvedAttributeAt(9).Highlight)
	assert.NotNil(t, m.ResolvedAttributeAt(10).Highlight)
}

func TestRemoveHighlight_KeepsOtherAxes(t *testing.T) {
	m := New(defaults(), 10)
	bold := WeightBold
	yellow := Yellow
	_, err := m.ApplyAttribute(0, 10, Partial{Weight: &bold, Highlight: &yellow})
	require.NoError(t, err)

	_, err = m.RemoveHighlight(0, 10)
	require.NoError(t, err)

	at := m.ResolvedAttributeAt(3)
	assert.Nil(t, at.Highlight)
	assert.True(t, at.Bold())
}

func TestRemoveHighlight_UncoversEarlierHighlight(t *testing.T) {
	m := New(defaults(), 10)
	_, err := m.ApplyAttribute(0, 10, WithHighlight(Green))
	require.NoError(t, err)
	_, err = m.ApplyAttribute(2, 6, WithHighlight(Pink))
	require.NoError(t, err)

	_, err = m.RemoveHighlight(0, 10)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Nil(t, m.ResolvedAttributeAt(i).Highlight, "offset %d", i)
	}
}

func TestRemoveHighlight_IgnoresNonHighlightRanges(t *testing.T) {
	m := New(defaults(), 10)
	_, err := m.ApplyAttribute(0, 10, WithWeight(WeightBold))
	require.NoError(t, err)

	n, err := m.RemoveHighlight(0, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, m.Ranges(), 1)
}

func TestShiftAfterEdit(t *testing.T) {
	tests := []struct {
		name          string
		length        int
		start, end    int
		offset, delta int
		wantStart     int
		wantEnd       int
		wantDropped   bool
	}{
		{name: "insert before range shifts it", length: 20, start: 5, end: 10, offset: 2, delta: 3, wantStart: 8, wantEnd: 13},
		{name: "insert at range start shifts it", length: 20, start: 5, end: 10, offset: 5, delta: 2, wantStart: 7, wantEnd: 12},
		{name: "insert inside range grows it", length: 20, start: 5, end: 10, offset: 7, delta: 4, wantStart: 5, wantEnd: 14},
		{name: "insert at range end leaves it", length: 20, start: 5, end: 10, offset: 10, delta: 4, wantStart: 5, wantEnd: 10},
		{name: "delete covering range drops it", length: 20, start: 3, end: 7, offset: 0, delta: -10, wantDropped: true},
		{name: "delete exactly the range drops it", length: 20, start: 3, end: 7, offset: 3, delta: -4, wantDropped: true},
		{name: "delete before range shifts back", length: 20, start: 10, end: 15, offset: 2, delta: -3, wantStart: 7, wantEnd: 12},
		{name: "delete overlapping head truncates", length: 20, start: 5, end: 10, offset: 3, delta: -4, wantStart: 3, wantEnd: 6},
		{name: "delete overlapping tail truncates", length: 20, start: 5, end: 10, offset: 8, delta: -4, wantStart: 5, wantEnd: 8},
		{name: "delete inside range shrinks it", length: 20, start: 5, end: 10, offset: 6, delta: -2, wantStart: 5, wantEnd: 8},
		{name: "delete after range leaves it", length: 20, start: 5, end: 10, offset: 12, delta: -3, wantStart: 5, wantEnd: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(defaults(), tt.length)
			_, err := m.ApplyAttribute(tt.start, tt.end, WithWeight(WeightBold))
			require.NoError(t, err)

			require.NoError(t, m.ShiftAfterEdit(tt.offset, tt.delta))
			assert.Equal(t, tt.length+tt.delta, m.Len())

			ranges := m.Ranges()
			if tt.wantDropped {
				assert.Empty(t, ranges)
				return
			}
			require.Len(t, ranges, 1)
			assert.Equal(t, tt.wantStart, ranges[0].Start)
			assert.Equal(t, tt.wantEnd, ranges[0].End)
		})
	}
}

func TestShiftAfterEdit_RejectsOutOfBounds(t *testing.T) {
	m := New(defaults(), 5)
	require.ErrorIs(t, m.ShiftAfterEdit(6, 1), ErrInvalidRange)
	require.ErrorIs(t, m.ShiftAfterEdit(3, -3), ErrInvalidRange)
	assert.Equal(t, 5, m.Len())
}

func TestRuns_MergesEqualNeighbours(t *testing.T) {
	m := New(defaults(), 12)
	_, err := m.ApplyAttribute(0, 4, WithWeight(WeightBold))
	require.NoError(t, err)
	_, err = m.ApplyAttribute(4, 8, WithWeight(WeightBold))
	require.NoError(t, err)
	_, err = m.ApplyAttribute(6, 10, WithHighlight(Cyan))
	require.NoError(t, err)

	runs := m.Runs()
	require.Len(t, runs, 4)
	assert.Equal(t, Run{Start: 0, End: 6, Attr: runs[0].Attr}, runs[0])
	assert.True(t, runs[0].Attr.Bold())
	assert.Equal(t, 6, runs[1].Start)
	assert.Equal(t, 8, runs[1].End)
	assert.NotNil(t, runs[1].Attr.Highlight)
	assert.Equal(t, 8, runs[2].Start)
	assert.Equal(t, 10, runs[2].End)
	assert.False(t, runs[2].Attr.Bold())
	assert.Equal(t, 10, runs[3].Start)
	assert.Equal(t, 12, runs[3].End)
}

func TestSnapshotRestore(t *testing.T) {
	m := New(defaults(), 10)
	_, err := m.ApplyAttribute(0, 5, WithWeight(WeightBold))
	require.NoError(t, err)
	snap := m.Snapshot()

	require.NoError(t, m.ShiftAfterEdit(0, -5))
	assert.Empty(t, m.Ranges())

	m.Restore(snap)
	assert.Equal(t, 10, m.Len())
	assert.True(t, m.ResolvedAttributeAt(2).Bold())

	r, err := m.ApplyAttribute(0, 5, WithWeight(WeightNormal))
	require.NoError(t, err)
	assert.Greater(t, r.Seq, uint64(1))
	assert.False(t, m.ResolvedAttributeAt(2).Bold())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 128, B: 0}, c)
	assert.Equal(t, "#ff8000", c.String())

	_, err = ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("zzzzzz")
	assert.Error(t, err)
}
