package frames

import (
	"fmt"

	"artidicia/internal/services"
)

// WorkingSet holds the frames of one session in display order, keyed by
// FrameID. It is owned by a single caller and is not safe for concurrent use.
type WorkingSet struct {
	order    []FrameID
	frames   map[FrameID]Frame
	selected map[FrameID]struct{}
}

// NewWorkingSet builds a working set from frames in order.
func NewWorkingSet(frames ...Frame) *WorkingSet {
	ws := &WorkingSet{frames: make(map[FrameID]Frame), selected: make(map[FrameID]struct{})}
	ws.Add(frames...)
	return ws
}

// Add appends frames, assigning IDs to any that lack one. Frames whose ID is
// already present are ignored.
func (ws *WorkingSet) Add(frames ...Frame) {
	for _, f := range frames {
		if f.ID == "" {
			f.ID = NewFrameID()
		}
		if _, exists := ws.frames[f.ID]; exists {
			continue
		}
		f.Index = len(ws.order)
		ws.order = append(ws.order, f.ID)
		ws.frames[f.ID] = f
	}
}

// Remove deletes a frame and renumbers the frames after it. Settings keyed
// by the remaining IDs are unaffected.
func (ws *WorkingSet) Remove(id FrameID) bool {
	f, ok := ws.frames[id]
	if !ok {
		return false
	}
	ws.order = append(ws.order[:f.Index], ws.order[f.Index+1:]...)
	delete(ws.frames, id)
	delete(ws.selected, id)
	for i := f.Index; i < len(ws.order); i++ {
		moved := ws.frames[ws.order[i]]
		moved.Index = i
		ws.frames[moved.ID] = moved
	}
	return true
}

// Len returns the number of frames.
func (ws *WorkingSet) Len() int { return len(ws.order) }

// Get returns the frame with id.
func (ws *WorkingSet) Get(id FrameID) (Frame, bool) {
	f, ok := ws.frames[id]
	return f, ok
}

// At returns the frame at display position index.
func (ws *WorkingSet) At(index int) (Frame, bool) {
	if index < 0 || index >= len(ws.order) {
		return Frame{}, false
	}
	return ws.frames[ws.order[index]], true
}

// Frames returns all frames in display order.
func (ws *WorkingSet) Frames() []Frame {
	out := make([]Frame, 0, len(ws.order))
	for _, id := range ws.order {
		out = append(out, ws.frames[id])
	}
	return out
}

// Select marks frames as selected.
func (ws *WorkingSet) Select(ids ...FrameID) error {
	for _, id := range ids {
		if _, ok := ws.frames[id]; !ok {
			return services.Wrap(services.ErrNotFound, "select", "select frame", fmt.Sprintf("Unknown frame %s", id), nil)
		}
	}
	for _, id := range ids {
		ws.selected[id] = struct{}{}
	}
	return nil
}

// SelectAll marks every frame as selected.
func (ws *WorkingSet) SelectAll() {
	for _, id := range ws.order {
		ws.selected[id] = struct{}{}
	}
}

// Deselect clears the selection flag for ids.
func (ws *WorkingSet) Deselect(ids ...FrameID) {
	for _, id := range ids {
		delete(ws.selected, id)
	}
}

// IsSelected reports whether id is selected.
func (ws *WorkingSet) IsSelected(id FrameID) bool {
	_, ok := ws.selected[id]
	return ok
}

// Selected returns the selected frames in display order.
func (ws *WorkingSet) Selected() []Frame {
	out := make([]Frame, 0, len(ws.selected))
	for _, id := range ws.order {
		if _, ok := ws.selected[id]; ok {
			out = append(out, ws.frames[id])
		}
	}
	return out
}

// SelectedIDs returns the IDs of selected frames in display order.
func (ws *WorkingSet) SelectedIDs() []FrameID {
	selected := ws.Selected()
	ids := make([]FrameID, len(selected))
	for i, f := range selected {
		ids[i] = f.ID
	}
	return ids
}
