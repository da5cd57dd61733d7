package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/recognition/internal/graph"
)

type seedGraph struct {
	nodes []*graph.Node
	links []graph.Link
}

func newSeedGraph() *seedGraph {
	nodes, links := graph.Seed()
	g := &seedGraph{links: links}
	for i := range nodes {
		n := nodes[i]
		n.X, n.Y = float64(10*n.ID), float64(-5*n.ID)
		g.nodes = append(g.nodes, &n)
	}
	return g
}

func (g *seedGraph) Node(id int) (*graph.Node, bool) {
	for _, n := range g.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

func (g *seedGraph) Links() []graph.Link { return g.links }

func kinds(fx []Effect) []EffectKind {
	out := make([]EffectKind, len(fx))
	for i, e := range fx {
		out[i] = e.Kind
	}
	return out
}

func TestHoverEnterMatchesLinkFilter(t *testing.T) {
	g := newSeedGraph()
	c := NewController(g, DefaultViewConfig())

	for _, n := range g.nodes {
		want := map[int]bool{}
		for _, l := range g.links {
			if l.Source == n.ID && l.Target != n.ID {
				want[l.Target] = true
			}
			if l.Target == n.ID && l.Source != n.ID {
				want[l.Source] = true
			}
		}

		res, err := c.Handle(Event{Type: HoverEnter, NodeID: n.ID})
		require.NoError(t, err)
		require.NotNil(t, res.Tooltip)
		assert.Equal(t, len(want), res.Tooltip.ConnectedCount, "node %d", n.ID)
		assert.Equal(t, n.Title, res.Tooltip.Title)
		require.Len(t, res.Effects, 1)
		assert.Equal(t, EffectHighlight, res.Effects[0].Kind)
		for _, id := range res.Effects[0].Connected {
			assert.True(t, want[id])
		}
		assert.Equal(t, n.ID, res.State.Hovered)
	}
}

func TestTooltipByKind(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())
	res, err := c.Handle(Event{Type: HoverEnter, NodeID: 5})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Tooltip.ConnectedCount)
	assert.Equal(t, map[graph.Kind]int{graph.Resonance: 1, graph.Tension: 1, graph.Evolution: 1}, res.Tooltip.ByKind)
	assert.Equal(t, "Connected to 3 other nodes", res.Tooltip.Summary())
	assert.Equal(t, "Connected to 1 other node", Tooltip{ConnectedCount: 1}.Summary())
}

func TestHoverLeave(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())

	res, err := c.Handle(Event{Type: HoverLeave})
	require.NoError(t, err)
	assert.Empty(t, res.Effects)

	_, err = c.Handle(Event{Type: HoverEnter, NodeID: 2})
	require.NoError(t, err)
	res, err = c.Handle(Event{Type: HoverLeave})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectClearHighlight}, kinds(res.Effects))
	assert.Zero(t, res.State.Hovered)
}

func TestUnknownNode(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())
	for _, typ := range []EventType{HoverEnter, DragStart, Drag, DragEnd, Select} {
		_, err := c.Handle(Event{Type: typ, NodeID: 42})
		assert.True(t, graph.IsNotFound(err), typ)
	}
	assert.Equal(t, State{}, c.State())
}

func TestUnknownEventType(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())
	_, err := c.Handle(Event{Type: "wiggle"})
	assert.True(t, graph.IsInput(err))
}

func TestDragLifecycle(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())

	res, err := c.Handle(Event{Type: DragStart, NodeID: 3, X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectAlphaTarget, EffectPin}, kinds(res.Effects))
	assert.Equal(t, 0.3, res.Effects[0].Alpha)
	assert.Equal(t, 3, res.State.Dragging)

	res, err = c.Handle(Event{Type: Drag, NodeID: 3, X: 7, Y: 8})
	require.NoError(t, err)
	require.Len(t, res.Effects, 1)
	assert.Equal(t, Effect{Kind: EffectPin, NodeID: 3, X: 7, Y: 8}, res.Effects[0])

	_, err = c.Handle(Event{Type: Drag, NodeID: 2, X: 7, Y: 8})
	assert.True(t, graph.IsInput(err))
	_, err = c.Handle(Event{Type: DragStart, NodeID: 2})
	assert.True(t, graph.IsInput(err))

	res, err = c.Handle(Event{Type: DragEnd, NodeID: 3})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectAlphaTarget, EffectUnpin}, kinds(res.Effects))
	assert.Zero(t, res.Effects[0].Alpha)
	assert.Zero(t, res.State.Dragging)
}

func TestDragEndKeepsSelectedNodePinned(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())

	_, err := c.Handle(Event{Type: Select, NodeID: 4})
	require.NoError(t, err)
	_, err = c.Handle(Event{Type: DragStart, NodeID: 4, X: 0, Y: 0})
	require.NoError(t, err)

	res, err := c.Handle(Event{Type: DragEnd, NodeID: 4})
	require.NoError(t, err)
	assert.NotContains(t, kinds(res.Effects), EffectUnpin)
	assert.Equal(t, 4, res.State.Selected)
}

func TestSelectAndDeselect(t *testing.T) {
	g := newSeedGraph()
	c := NewController(g, DefaultViewConfig())

	res, err := c.Handle(Event{Type: Select, NodeID: 2})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectPin, EffectHalt, EffectShowDialog}, kinds(res.Effects))
	assert.Equal(t, 20.0, res.Effects[0].X)
	assert.Equal(t, -10.0, res.Effects[0].Y)

	res, err = c.Handle(Event{Type: Select, NodeID: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Effects)

	res, err = c.Handle(Event{Type: Select, NodeID: 5})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectUnpin, EffectPin, EffectHalt, EffectShowDialog}, kinds(res.Effects))
	assert.Equal(t, 2, res.Effects[0].NodeID)

	res, err = c.Handle(Event{Type: Deselect})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectUnpinAll, EffectResume, EffectAlphaTarget, EffectCloseDialog}, kinds(res.Effects))
	assert.Equal(t, 0.3, res.Effects[1].Alpha)
	assert.Zero(t, res.Effects[2].Alpha)
	assert.Zero(t, res.State.Selected)

	res, err = c.Handle(Event{Type: Deselect})
	require.NoError(t, err)
	assert.Empty(t, res.Effects)
}

func TestDeselectDuringDragKeepsDragPinned(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())
	_, err := c.Handle(Event{Type: Select, NodeID: 1})
	require.NoError(t, err)
	_, err = c.Handle(Event{Type: DragStart, NodeID: 3, X: 5, Y: 5})
	require.NoError(t, err)

	res, err := c.Handle(Event{Type: Deselect})
	require.NoError(t, err)
	assert.Equal(t, []EffectKind{EffectUnpinAll, EffectResume, EffectPin, EffectCloseDialog}, kinds(res.Effects))
	assert.Equal(t, 3, res.Effects[2].NodeID)
}

func TestCentralToggle(t *testing.T) {
	c := NewController(newSeedGraph(), DefaultViewConfig())

	res, err := c.Handle(Event{Type: CentralToggle})
	require.NoError(t, err)
	assert.True(t, res.State.ShowAll)
	assert.True(t, res.Effects[0].ShowAll)

	res, err = c.Handle(Event{Type: CentralToggle})
	require.NoError(t, err)
	assert.False(t, res.State.ShowAll)

	c.Handle(Event{Type: CentralToggle})
	c.Handle(Event{Type: Select, NodeID: 1})
	c.Reset()
	assert.Equal(t, State{ShowAll: true}, c.State())
}

func TestParseEventType(t *testing.T) {
	for _, typ := range EventTypes {
		got, err := ParseEventType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseEventType("click")
	assert.True(t, graph.IsInput(err))
}
