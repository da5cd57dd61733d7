package layout

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/lazypower/recognition/internal/graph"
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Simulation owns a positioned working set and the annealing schedule that
// drives it. It is not safe for concurrent use; callers serialise access.
type Simulation struct {
	cfg    Config
	forces *Forces
	rng    *rand.Rand
	log    *zap.Logger

	nodes []*graph.Node
	index map[int]*graph.Node
	links []graph.Link

	alpha       float64
	alphaTarget float64
	running     bool
	steps       int
}

// New returns an empty, running simulation at cfg.AlphaInitial.
func New(cfg Config, log *zap.Logger) *Simulation {
	if log == nil {
		log = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Simulation{
		cfg:     cfg,
		forces:  NewForces(cfg, rng),
		rng:     rng,
		log:     log,
		index:   make(map[int]*graph.Node),
		alpha:   cfg.AlphaInitial,
		running: true,
	}
}

// Config returns the active parameters.
func (s *Simulation) Config() Config { return s.cfg }

// SetConfig swaps the force parameters without disturbing node state.
func (s *Simulation) SetConfig(cfg Config) {
	s.cfg = cfg
	s.forces = NewForces(cfg, s.rng)
}

// SetGraph replaces the working set. Nodes already present keep their
// position, velocity and orbital parameters; new nodes are placed and given
// orbital parameters. Links that do not resolve are dropped and returned.
// The simulation is reheated to AlphaInitial and started.
func (s *Simulation) SetGraph(nodes []graph.Node, links []graph.Link) ([]error, error) {
	if err := graph.ValidateNodes(nodes); err != nil {
		return nil, err
	}

	prev := s.index
	s.nodes = make([]*graph.Node, 0, len(nodes))
	s.index = make(map[int]*graph.Node, len(nodes))
	for _, n := range nodes {
		nd := n
		if old, ok := prev[n.ID]; ok {
			nd.X, nd.Y, nd.VX, nd.VY = old.X, old.Y, old.VX, old.VY
			nd.Pinned = old.Pinned
			nd.OrbitalRadius, nd.OrbitalSpeed, nd.OrbitalPhase = old.OrbitalRadius, old.OrbitalSpeed, old.OrbitalPhase
			s.insert(&nd)
			continue
		}
		s.place(&nd)
	}

	valid, problems := graph.CheckLinks(s.ids(), links)
	for _, p := range problems {
		s.log.Warn("skipping link", zap.Error(p))
	}
	s.links = valid

	s.alpha = s.cfg.AlphaInitial
	s.running = true
	return problems, nil
}

// Add places n in the working set with explicit orbital parameters.
func (s *Simulation) Add(n graph.Node) (*graph.Node, error) {
	if n.ID <= 0 {
		return nil, graph.NewValidation(fmt.Sprintf("node id %d must be positive", n.ID))
	}
	if _, ok := s.index[n.ID]; ok {
		return nil, graph.NewValidation(fmt.Sprintf("duplicate node id %d", n.ID))
	}
	nd := n
	s.place(&nd)
	return &nd, nil
}

// AddLink appends l if both endpoints are in the working set.
func (s *Simulation) AddLink(l graph.Link) error {
	_, problems := graph.CheckLinks(s.ids(), []graph.Link{l})
	if len(problems) > 0 {
		return problems[0]
	}
	s.links = append(s.links, l)
	return nil
}

func (s *Simulation) ids() map[int]bool {
	ids := make(map[int]bool, len(s.nodes))
	for _, nd := range s.nodes {
		ids[nd.ID] = true
	}
	return ids
}

func (s *Simulation) insert(nd *graph.Node) {
	s.nodes = append(s.nodes, nd)
	s.index[nd.ID] = nd
}

// place gives nd a phyllotaxis starting position and its orbital parameters.
func (s *Simulation) place(nd *graph.Node) {
	i := float64(len(s.nodes))
	r := 10 * math.Sqrt(0.5+i)
	a := i * initialAngle
	nd.X, nd.Y = r*math.Cos(a), r*math.Sin(a)
	nd.VX, nd.VY = 0, 0
	nd.Pinned = false

	lo := math.Max(s.cfg.OrbitSeedMin, s.cfg.OrbitMin)
	nd.OrbitalRadius = s.cfg.clampOrbit(lo + s.rng.Float64()*(s.cfg.OrbitMax-lo))
	nd.OrbitalSpeed = s.cfg.OrbitSpeed * (1 - 0.2*s.rng.Float64())
	nd.OrbitalPhase = math.Atan2(nd.Y, nd.X)
	s.insert(nd)
}

// Step decays alpha toward its target and applies one round of forces,
// regardless of whether the simulation is running.
func (s *Simulation) Step() {
	if len(s.nodes) == 0 {
		return
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	for _, p := range s.forces.Apply(s.nodes, s.links, s.alpha) {
		s.log.Warn("skipping link", zap.Error(p))
	}
	s.steps++
}

// Tick steps once if running and reports whether a step happened. Once alpha
// falls below AlphaMin with no target holding it up, the simulation stops.
func (s *Simulation) Tick() bool {
	if !s.running {
		return false
	}
	if len(s.nodes) == 0 {
		return false
	}
	s.Step()
	if s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin {
		s.running = false
		s.log.Debug("layout cooled", zap.Int("steps", s.steps))
	}
	return true
}

// Start resumes ticking without altering alpha.
func (s *Simulation) Start() { s.running = true }

// Stop halts ticking. Stopping a stopped simulation is a no-op.
func (s *Simulation) Stop() { s.running = false }

// Running reports whether Tick will step.
func (s *Simulation) Running() bool { return s.running }

// Alpha is the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget is the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget changes the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(target float64) { s.alphaTarget = target }

// Reheat sets alpha to alpha and starts the simulation.
func (s *Simulation) Reheat(alpha float64) {
	s.alpha = alpha
	s.running = true
}

// Steps is the number of steps applied since construction.
func (s *Simulation) Steps() int { return s.steps }

// Node returns the live node with the given id.
func (s *Simulation) Node(id int) (*graph.Node, bool) {
	nd, ok := s.index[id]
	return nd, ok
}

// Nodes returns the live working set in insertion order.
func (s *Simulation) Nodes() []*graph.Node { return s.nodes }

// Links returns the resolved links.
func (s *Simulation) Links() []graph.Link { return s.links }

// Pin fixes node id at (x, y) and clears its velocity.
func (s *Simulation) Pin(id int, x, y float64) error {
	nd, ok := s.index[id]
	if !ok {
		return graph.NewNotFound(fmt.Sprintf("node %d", id))
	}
	nd.X, nd.Y = x, y
	nd.VX, nd.VY = 0, 0
	nd.Pinned = true
	return nil
}

// Unpin releases node id back to the forces.
func (s *Simulation) Unpin(id int) error {
	nd, ok := s.index[id]
	if !ok {
		return graph.NewNotFound(fmt.Sprintf("node %d", id))
	}
	nd.Pinned = false
	return nil
}

// UnpinAll releases every node.
func (s *Simulation) UnpinAll() {
	for _, nd := range s.nodes {
		nd.Pinned = false
	}
}
