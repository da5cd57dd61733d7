package layout

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lazypower/recognition/internal/graph"
)

// Forces computes one integration step over a set of nodes. All force
// contributions read the positions as they were at the start of the step;
// positions are committed only after every force has run.
type Forces struct {
	cfg Config
	rng *rand.Rand
}

// NewForces returns a force set using cfg. rng supplies the tiny jitter used
// to separate coincident nodes.
func NewForces(cfg Config, rng *rand.Rand) *Forces {
	return &Forces{cfg: cfg, rng: rng}
}

type resolvedLink struct {
	s, t     int
	strength float64
	bias     float64
}

// Apply mutates x, y, vx, vy (and the orbital phase and radius) of nodes in
// place. Links that reference an id outside nodes are skipped and returned as
// validation errors. Pinned nodes keep their position and have their velocity
// zeroed. An empty node set is a no-op.
func (f *Forces) Apply(nodes []*graph.Node, links []graph.Link, alpha float64) []error {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	index := make(map[int]int, n)
	for i, nd := range nodes {
		index[nd.ID] = i
	}

	var problems []error
	degree := make([]int, n)
	resolved := make([]resolvedLink, 0, len(links))
	for _, l := range links {
		s, okS := index[l.Source]
		t, okT := index[l.Target]
		if !okS || !okT {
			problems = append(problems, graph.NewValidation(fmt.Sprintf("link %s references an unknown node", l)))
			continue
		}
		if s == t {
			continue
		}
		degree[s]++
		degree[t]++
		resolved = append(resolved, resolvedLink{s: s, t: t, strength: f.cfg.linkStrength(l.Kind)})
	}
	for i := range resolved {
		ds, dt := float64(degree[resolved[i].s]), float64(degree[resolved[i].t])
		resolved[i].bias = ds / (ds + dt)
	}

	px := make([]float64, n)
	py := make([]float64, n)
	for i, nd := range nodes {
		px[i], py[i] = nd.X, nd.Y
	}

	dvx := make([]float64, n)
	dvy := make([]float64, n)
	dpx := make([]float64, n)
	dpy := make([]float64, n)

	f.repel(px, py, alpha, dvx, dvy)
	f.center(px, py, dpx, dpy)
	f.attract(resolved, px, py, alpha, dvx, dvy)
	f.collide(px, py, dvx, dvy)
	f.orbit(nodes, px, py, alpha, dvx, dvy)

	keep := 1 - f.cfg.VelocityDecay
	for i, nd := range nodes {
		if nd.Pinned {
			nd.VX, nd.VY = 0, 0
			continue
		}
		nd.VX = (nd.VX + dvx[i]) * keep
		nd.VY = (nd.VY + dvy[i]) * keep
		nd.X += nd.VX + dpx[i]
		nd.Y += nd.VY + dpy[i]
	}
	return problems
}

func (f *Forces) jiggle() float64 {
	return (f.rng.Float64() - 0.5) * 1e-6
}

// repel applies an inverse-square many-body force between every pair.
func (f *Forces) repel(px, py []float64, alpha float64, dvx, dvy []float64) {
	if f.cfg.Charge == 0 {
		return
	}
	for i := 0; i < len(px); i++ {
		for j := i + 1; j < len(px); j++ {
			dx := px[j] - px[i]
			dy := py[j] - py[i]
			if dx == 0 && dy == 0 {
				dx, dy = f.jiggle(), f.jiggle()
			}
			l2 := dx*dx + dy*dy
			if l2 < 1 {
				l2 = math.Sqrt(l2)
			}
			w := f.cfg.Charge * alpha / l2
			dvx[i] += dx * w
			dvy[i] += dy * w
			dvx[j] -= dx * w
			dvy[j] -= dy * w
		}
	}
}

// center shifts every node by a fraction of the centroid offset. It acts on
// position rather than velocity so the centroid shrinks geometrically.
func (f *Forces) center(px, py []float64, dpx, dpy []float64) {
	if f.cfg.CenterStrength == 0 {
		return
	}
	var cx, cy float64
	for i := range px {
		cx += px[i]
		cy += py[i]
	}
	n := float64(len(px))
	sx := -cx / n * f.cfg.CenterStrength
	sy := -cy / n * f.cfg.CenterStrength
	for i := range dpx {
		dpx[i] += sx
		dpy[i] += sy
	}
}

// attract pulls link endpoints toward LinkDistance, splitting the correction
// by relative degree so hubs move less.
func (f *Forces) attract(links []resolvedLink, px, py []float64, alpha float64, dvx, dvy []float64) {
	for _, l := range links {
		if l.strength == 0 {
			continue
		}
		dx := px[l.t] - px[l.s]
		dy := py[l.t] - py[l.s]
		if dx == 0 && dy == 0 {
			dx, dy = f.jiggle(), f.jiggle()
		}
		d := math.Sqrt(dx*dx + dy*dy)
		k := (d - f.cfg.LinkDistance) / d * alpha * l.strength
		dx *= k
		dy *= k
		dvx[l.t] -= dx * l.bias
		dvy[l.t] -= dy * l.bias
		dvx[l.s] += dx * (1 - l.bias)
		dvy[l.s] += dy * (1 - l.bias)
	}
}

// collide pushes apart any pair closer than two radii.
func (f *Forces) collide(px, py []float64, dvx, dvy []float64) {
	if f.cfg.CollideStrength == 0 || f.cfg.CollideRadius <= 0 {
		return
	}
	sep := 2 * f.cfg.CollideRadius
	for i := 0; i < len(px); i++ {
		for j := i + 1; j < len(px); j++ {
			dx := px[i] - px[j]
			dy := py[i] - py[j]
			l2 := dx*dx + dy*dy
			if l2 >= sep*sep {
				continue
			}
			if l2 == 0 {
				dx, dy = f.jiggle(), f.jiggle()
				l2 = dx*dx + dy*dy
			}
			l := math.Sqrt(l2)
			k := (sep - l) / l * f.cfg.CollideStrength * 0.5
			dvx[i] += dx * k
			dvy[i] += dy * k
			dvx[j] -= dx * k
			dvy[j] -= dy * k
		}
	}
}

// orbit advances each node's angle around the centroid and nudges its
// velocity toward the implied position. The radius spirals by SpiralFactor
// and is always held inside [OrbitMin, OrbitMax].
func (f *Forces) orbit(nodes []*graph.Node, px, py []float64, alpha float64, dvx, dvy []float64) {
	var cx, cy float64
	for i := range px {
		cx += px[i]
		cy += py[i]
	}
	cx /= float64(len(px))
	cy /= float64(len(py))

	for i, nd := range nodes {
		if nd.Pinned {
			nd.OrbitalRadius = f.cfg.clampOrbit(nd.OrbitalRadius)
			continue
		}
		nd.OrbitalPhase += nd.OrbitalSpeed * alpha
		nd.OrbitalRadius = f.cfg.clampOrbit(nd.OrbitalRadius * f.spiral())
		if f.cfg.OrbitStrength == 0 {
			continue
		}
		tx := cx + nd.OrbitalRadius*math.Cos(nd.OrbitalPhase)
		ty := cy + nd.OrbitalRadius*math.Sin(nd.OrbitalPhase)
		w := f.cfg.OrbitStrength * alpha
		dvx[i] += (tx - px[i]) * w
		dvy[i] += (ty - py[i]) * w
	}
}

func (f *Forces) spiral() float64 {
	if f.cfg.SpiralFactor <= 0 {
		return 1
	}
	return f.cfg.SpiralFactor
}
