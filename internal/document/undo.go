package document

import "inkpad/internal/styles"

// ActionType classifies an undoable edit.
type ActionType int

const (
	ActionInsert ActionType = iota
	ActionDelete
	ActionReplace
	ActionFormat
)

// maxHistory bounds each undo stack.
const maxHistory = 500

// state is the part of a document that text splices alone cannot rebuild.
type state struct {
	styles  styles.Snapshot
	markers []Marker
}

// Action is one entry of the undo history. Text edits are replayed by
// splicing Removed/Inserted at Pos; formatting and markers are restored
// from the captured state.
type Action struct {
	Type     ActionType
	Pos      int
	Removed  []rune
	Inserted []rune
	Before   state
	After    state
}

func actionTypeFor(removed, inserted []rune) ActionType {
	switch {
	case len(removed) == 0:
		return ActionInsert
	case len(inserted) == 0:
		return ActionDelete
	default:
		return ActionReplace
	}
}

func (d *Document) capture() state {
	ms := make([]Marker, len(d.markers))
	copy(ms, d.markers)
	return state{styles: d.styles.Snapshot(), markers: ms}
}

func (d *Document) restore(s state) {
	d.styles.Restore(s.styles)
	d.markers = make([]Marker, len(s.markers))
	copy(d.markers, s.markers)
}

func (d *Document) record(a Action) {
	d.undoStack = append(d.undoStack, a)
	if len(d.undoStack) > maxHistory {
		d.undoStack = d.undoStack[len(d.undoStack)-maxHistory:]
	}
	d.redoStack = d.redoStack[:0]
}

// rawSplice swaps runes without touching formatting; restore follows it.
func (d *Document) rawSplice(pos, removeLen int, inserted []rune) {
	out := make([]rune, 0, len(d.text)-removeLen+len(inserted))
	out = append(out, d.text[:pos]...)
	out = append(out, inserted...)
	out = append(out, d.text[pos+removeLen:]...)
	d.text = out
	d.touch()
}

// CanUndo reports whether there is history to undo.
func (d *Document) CanUndo() bool { return len(d.undoStack) > 0 }

// CanRedo reports whether there is undone history to replay.
func (d *Document) CanRedo() bool { return len(d.redoStack) > 0 }

// Undo reverts the most recent action. It reports false when there is none.
func (d *Document) Undo() bool {
	if len(d.undoStack) == 0 {
		return false
	}

	last := len(d.undoStack) - 1
	action := d.undoStack[last]
	d.undoStack = d.undoStack[:last]

	if action.Type != ActionFormat {
		d.rawSplice(action.Pos, len(action.Inserted), action.Removed)
	}
	d.restore(action.Before)
	d.touch()

	d.redoStack = append(d.redoStack, action)
	return true
}

// Redo replays the most recently undone action.
func (d *Document) Redo() bool {
	if len(d.redoStack) == 0 {
		return false
	}

	last := len(d.redoStack) - 1
	action := d.redoStack[last]
	d.redoStack = d.redoStack[:last]

	if action.Type != ActionFormat {
		d.rawSplice(action.Pos, len(action.Removed), action.Inserted)
	}
	d.restore(action.After)
	d.touch()

	d.undoStack = append(d.undoStack, action)
	return true
}
