package interaction

import (
	"fmt"

	"github.com/lazypower/recognition/internal/graph"
)

// EventType names a discrete pointer or UI input.
type EventType string

const (
	HoverEnter    EventType = "hover_enter"
	HoverLeave    EventType = "hover_leave"
	DragStart     EventType = "drag_start"
	Drag          EventType = "drag"
	DragEnd       EventType = "drag_end"
	Select        EventType = "select"
	Deselect      EventType = "deselect"
	CentralToggle EventType = "central_toggle"
)

// EventTypes lists every accepted event type.
var EventTypes = []EventType{HoverEnter, HoverLeave, DragStart, Drag, DragEnd, Select, Deselect, CentralToggle}

// Event is one input to the controller. X and Y carry the pointer position
// for drag events and are ignored otherwise.
type Event struct {
	Type   EventType `json:"type"`
	NodeID int       `json:"node_id,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
}

func (e EventType) needsNode() bool {
	switch e {
	case HoverEnter, DragStart, Drag, DragEnd, Select:
		return true
	}
	return false
}

// ParseEventType converts s to an EventType.
func ParseEventType(s string) (EventType, error) {
	for _, t := range EventTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", graph.NewInput(fmt.Sprintf("unknown event type %q", s), map[string]string{"type": "unknown"})
}

// EffectKind names a side effect the caller must apply.
type EffectKind string

const (
	EffectHighlight         EffectKind = "highlight"
	EffectClearHighlight    EffectKind = "clear_highlight"
	EffectPin               EffectKind = "pin"
	EffectUnpin             EffectKind = "unpin"
	EffectUnpinAll          EffectKind = "unpin_all"
	EffectAlphaTarget       EffectKind = "alpha_target"
	EffectHalt              EffectKind = "halt"
	EffectResume            EffectKind = "resume"
	EffectShowDialog        EffectKind = "show_dialog"
	EffectCloseDialog       EffectKind = "close_dialog"
	EffectToggleConnections EffectKind = "toggle_connections"
)

// Effect is a view or layout update produced by a transition.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	NodeID    int        `json:"node_id,omitempty"`
	X         float64    `json:"x,omitempty"`
	Y         float64    `json:"y,omitempty"`
	Alpha     float64    `json:"alpha,omitempty"`
	Connected []int      `json:"connected,omitempty"`
	ShowAll   bool       `json:"show_all,omitempty"`
}

func (e Effect) String() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("%s(%d)", e.Kind, e.NodeID)
	}
	return string(e.Kind)
}
