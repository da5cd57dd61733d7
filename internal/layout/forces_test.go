package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/recognition/internal/graph"
)

func centeringOnly() Config {
	cfg := DefaultConfig()
	cfg.Charge = 0
	cfg.LinkStrength = nil
	cfg.CollideStrength = 0
	cfg.OrbitStrength = 0
	return cfg
}

func scattered() []*graph.Node {
	return []*graph.Node{
		{ID: 1, X: 300, Y: 120},
		{ID: 2, X: 260, Y: -40},
		{ID: 3, X: 410, Y: 75},
		{ID: 4, X: 180, Y: 220},
	}
}

func centroidDist(nodes []*graph.Node) float64 {
	var cx, cy float64
	for _, n := range nodes {
		cx += n.X
		cy += n.Y
	}
	cx /= float64(len(nodes))
	cy /= float64(len(nodes))
	return math.Hypot(cx, cy)
}

func TestApplyEmptyIsNoop(t *testing.T) {
	f := NewForces(DefaultConfig(), rand.New(rand.NewSource(1)))
	assert.Nil(t, f.Apply(nil, []graph.Link{{Source: 1, Target: 2, Kind: graph.Tension}}, 0.3))
}

func TestCenteringConvergesMonotonically(t *testing.T) {
	f := NewForces(centeringOnly(), rand.New(rand.NewSource(1)))
	nodes := scattered()

	prev := centroidDist(nodes)
	for i := 0; i < 200; i++ {
		f.Apply(nodes, nil, 0.3)
		d := centroidDist(nodes)
		require.LessOrEqual(t, d, prev, "step %d", i)
		prev = d
	}
	assert.Less(t, prev, 1e-6)
}

func TestPinnedNodeHoldsPosition(t *testing.T) {
	_, links := graph.Seed()
	f := NewForces(DefaultConfig(), rand.New(rand.NewSource(7)))
	nodes := []*graph.Node{
		{ID: 1, X: 10, Y: 0, OrbitalRadius: 150, OrbitalSpeed: 0.01},
		{ID: 2, X: -30, Y: 12, OrbitalRadius: 180, OrbitalSpeed: 0.01, Pinned: true},
		{ID: 3, X: 5, Y: -20, OrbitalRadius: 200, OrbitalSpeed: 0.01},
		{ID: 4, X: 40, Y: 40, OrbitalRadius: 220, OrbitalSpeed: 0.01},
		{ID: 5, X: -12, Y: -50, OrbitalRadius: 240, OrbitalSpeed: 0.01},
	}

	for i := 0; i < 500; i++ {
		f.Apply(nodes, links, 0.3)
		require.Equal(t, -30.0, nodes[1].X)
		require.Equal(t, 12.0, nodes[1].Y)
	}
	assert.Zero(t, nodes[1].VX)
	assert.NotEqual(t, 10.0, nodes[0].X)
}

func TestOrbitRadiusStaysClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpiralFactor = 1.05
	f := NewForces(cfg, rand.New(rand.NewSource(3)))

	nodes := []*graph.Node{
		{ID: 1, X: 1, Y: 1, OrbitalRadius: 10, OrbitalSpeed: 0.01},
		{ID: 2, X: -1, Y: 2, OrbitalRadius: 245, OrbitalSpeed: 0.02},
		{ID: 3, X: 3, Y: -2, OrbitalRadius: 900, OrbitalSpeed: 0.01, Pinned: true},
	}
	for i := 0; i < 2000; i++ {
		f.Apply(nodes, nil, 0.3)
		for _, n := range nodes {
			require.GreaterOrEqual(t, n.OrbitalRadius, 50.0)
			require.LessOrEqual(t, n.OrbitalRadius, 250.0)
		}
	}
	assert.Equal(t, 250.0, nodes[0].OrbitalRadius)

	cfg.SpiralFactor = 0.9
	f = NewForces(cfg, rand.New(rand.NewSource(3)))
	for i := 0; i < 200; i++ {
		f.Apply(nodes, nil, 0.3)
	}
	assert.Equal(t, 50.0, nodes[0].OrbitalRadius)
}

func TestUnknownLinkSkipped(t *testing.T) {
	f := NewForces(DefaultConfig(), rand.New(rand.NewSource(1)))
	nodes := scattered()
	links := []graph.Link{
		{Source: 1, Target: 2, Kind: graph.Resonance},
		{Source: 1, Target: 99, Kind: graph.Tension},
	}

	problems := f.Apply(nodes, links, 0.3)
	require.Len(t, problems, 1)
	assert.True(t, graph.IsValidation(problems[0]))
}

func TestRepulsionSeparatesCoincidentNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CenterStrength = 0
	cfg.OrbitStrength = 0
	f := NewForces(cfg, rand.New(rand.NewSource(11)))

	nodes := []*graph.Node{{ID: 1}, {ID: 2}}
	for i := 0; i < 50; i++ {
		f.Apply(nodes, nil, 0.3)
	}
	d := math.Hypot(nodes[0].X-nodes[1].X, nodes[0].Y-nodes[1].Y)
	assert.Greater(t, d, 2*cfg.CollideRadius)
}

func TestLinkPullsTowardDistance(t *testing.T) {
	cfg := centeringOnly()
	cfg.CenterStrength = 0
	cfg.LinkStrength = map[graph.Kind]float64{graph.Resonance: 0.7}
	f := NewForces(cfg, rand.New(rand.NewSource(1)))

	nodes := []*graph.Node{{ID: 1, X: -300}, {ID: 2, X: 300}}
	links := []graph.Link{{Source: 1, Target: 2, Kind: graph.Resonance}}
	for i := 0; i < 400; i++ {
		f.Apply(nodes, links, 0.3)
	}
	assert.InDelta(t, cfg.LinkDistance, nodes[1].X-nodes[0].X, 1)
}

func TestLinkStrengthPerKind(t *testing.T) {
	cfg := centeringOnly()
	cfg.CenterStrength = 0
	cfg.LinkStrength = map[graph.Kind]float64{graph.Resonance: 0.7, graph.Evolution: 0}
	f := NewForces(cfg, rand.New(rand.NewSource(1)))

	nodes := []*graph.Node{{ID: 1, X: -300}, {ID: 2, X: 300}}
	f.Apply(nodes, []graph.Link{{Source: 1, Target: 2, Kind: graph.Evolution}}, 0.3)
	assert.Equal(t, -300.0, nodes[0].X)
	assert.Equal(t, 300.0, nodes[1].X)
}
