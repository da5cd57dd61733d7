package interaction

import (
	"fmt"

	"github.com/lazypower/recognition/internal/graph"
)

// Graph is the read side of the working set the controller needs.
// *layout.Simulation satisfies it.
type Graph interface {
	Node(id int) (*graph.Node, bool)
	Links() []graph.Link
}

// State is the transient interaction state. Zero ids mean "none".
type State struct {
	Hovered  int  `json:"hovered"`
	Selected int  `json:"selected"`
	Dragging int  `json:"dragging"`
	ShowAll  bool `json:"show_all"`
}

// Tooltip is the hover payload.
type Tooltip struct {
	NodeID         int                `json:"node_id"`
	Title          string             `json:"title"`
	ConnectedCount int                `json:"connected_count"`
	ByKind         map[graph.Kind]int `json:"by_kind"`
}

// Summary is the human line shown under the tooltip title.
func (t Tooltip) Summary() string {
	if t.ConnectedCount == 1 {
		return "Connected to 1 other node"
	}
	return fmt.Sprintf("Connected to %d other nodes", t.ConnectedCount)
}

// Result is the outcome of one transition.
type Result struct {
	State   State    `json:"state"`
	Effects []Effect `json:"effects"`
	Tooltip *Tooltip `json:"tooltip,omitempty"`
}

// Controller turns input events into state transitions and effects. It holds
// no reference to the layout beyond reads through Graph; the caller applies
// the returned effects. Not safe for concurrent use.
type Controller struct {
	g     Graph
	cfg   ViewConfig
	state State
}

// NewController returns an idle controller reading from g.
func NewController(g Graph, cfg ViewConfig) *Controller {
	return &Controller{g: g, cfg: cfg}
}

// SetViewConfig replaces the opacities, radii and reheat alpha. State is kept.
func (c *Controller) SetViewConfig(cfg ViewConfig) { c.cfg = cfg }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Reset drops hover, drag and selection, keeping the show-all mode. Used
// after the working set is replaced.
func (c *Controller) Reset() {
	c.state = State{ShowAll: c.state.ShowAll}
}

// Handle applies ev. On error the state is unchanged.
func (c *Controller) Handle(ev Event) (Result, error) {
	var nd *graph.Node
	if ev.Type.needsNode() {
		var ok bool
		nd, ok = c.g.Node(ev.NodeID)
		if !ok {
			return Result{State: c.state}, graph.NewNotFound(fmt.Sprintf("node %d", ev.NodeID))
		}
	}

	var (
		fx  []Effect
		tip *Tooltip
		err error
	)
	switch ev.Type {
	case HoverEnter:
		fx, tip = c.hoverEnter(nd)
	case HoverLeave:
		fx = c.hoverLeave()
	case DragStart:
		fx, err = c.dragStart(nd, ev.X, ev.Y)
	case Drag:
		fx, err = c.drag(nd, ev.X, ev.Y)
	case DragEnd:
		fx = c.dragEnd(nd)
	case Select:
		fx = c.selectNode(nd)
	case Deselect:
		fx = c.deselect()
	case CentralToggle:
		c.state.ShowAll = !c.state.ShowAll
		fx = []Effect{{Kind: EffectToggleConnections, ShowAll: c.state.ShowAll}}
	default:
		_, err = ParseEventType(string(ev.Type))
	}
	if err != nil {
		return Result{State: c.state}, err
	}
	if fx == nil {
		fx = []Effect{}
	}
	return Result{State: c.state, Effects: fx, Tooltip: tip}, nil
}

func (c *Controller) hoverEnter(nd *graph.Node) ([]Effect, *Tooltip) {
	nb := graph.Neighbors(nd.ID, c.g.Links())
	c.state.Hovered = nd.ID

	tip := &Tooltip{
		NodeID:         nd.ID,
		Title:          nd.Title,
		ConnectedCount: len(nb.Connected),
		ByKind:         nb.ByKind,
	}
	return []Effect{{Kind: EffectHighlight, NodeID: nd.ID, Connected: nb.SortedIDs()}}, tip
}

func (c *Controller) hoverLeave() []Effect {
	if c.state.Hovered == 0 {
		return nil
	}
	c.state.Hovered = 0
	return []Effect{{Kind: EffectClearHighlight, ShowAll: c.state.ShowAll}}
}

func (c *Controller) dragStart(nd *graph.Node, x, y float64) ([]Effect, error) {
	if c.state.Dragging != 0 && c.state.Dragging != nd.ID {
		return nil, graph.NewInput(fmt.Sprintf("node %d is already being dragged", c.state.Dragging),
			map[string]string{"node_id": "busy"})
	}
	c.state.Dragging = nd.ID
	return []Effect{
		{Kind: EffectAlphaTarget, Alpha: c.cfg.ReheatAlpha},
		{Kind: EffectPin, NodeID: nd.ID, X: x, Y: y},
	}, nil
}

func (c *Controller) drag(nd *graph.Node, x, y float64) ([]Effect, error) {
	if c.state.Dragging != nd.ID {
		return nil, graph.NewInput(fmt.Sprintf("node %d is not being dragged", nd.ID),
			map[string]string{"node_id": "not_dragging"})
	}
	return []Effect{{Kind: EffectPin, NodeID: nd.ID, X: x, Y: y}}, nil
}

func (c *Controller) dragEnd(nd *graph.Node) []Effect {
	if c.state.Dragging != nd.ID {
		return nil
	}
	c.state.Dragging = 0
	fx := []Effect{{Kind: EffectAlphaTarget, Alpha: 0}}
	if c.state.Selected != nd.ID {
		fx = append(fx, Effect{Kind: EffectUnpin, NodeID: nd.ID})
	}
	return fx
}

func (c *Controller) selectNode(nd *graph.Node) []Effect {
	if c.state.Selected == nd.ID {
		return nil
	}
	var fx []Effect
	if prev := c.state.Selected; prev != 0 && prev != c.state.Dragging {
		fx = append(fx, Effect{Kind: EffectUnpin, NodeID: prev})
	}
	c.state.Selected = nd.ID
	fx = append(fx,
		Effect{Kind: EffectPin, NodeID: nd.ID, X: nd.X, Y: nd.Y},
		Effect{Kind: EffectHalt},
		Effect{Kind: EffectShowDialog, NodeID: nd.ID},
	)
	return fx
}

func (c *Controller) deselect() []Effect {
	if c.state.Selected == 0 {
		return nil
	}
	id := c.state.Selected
	c.state.Selected = 0
	fx := []Effect{{Kind: EffectUnpinAll}}
	fx = append(fx, Effect{Kind: EffectResume, Alpha: c.cfg.ReheatAlpha})

	// A drag in progress keeps its node pinned and the layout warm.
	if d := c.state.Dragging; d != 0 {
		if nd, ok := c.g.Node(d); ok {
			fx = append(fx, Effect{Kind: EffectPin, NodeID: d, X: nd.X, Y: nd.Y})
		}
	} else {
		fx = append(fx, Effect{Kind: EffectAlphaTarget, Alpha: 0})
	}
	return append(fx, Effect{Kind: EffectCloseDialog, NodeID: id})
}
