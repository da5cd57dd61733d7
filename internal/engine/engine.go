package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/recognition/internal/graph"
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/layout"
	"github.com/lazypower/recognition/internal/metrics"
	"github.com/lazypower/recognition/internal/store"
)

// Store is the data store collaborator. *store.DB implements it.
type Store interface {
	LoadGraph() (store.Graph, error)
	AddNodeAndLink(n graph.Node, l graph.Link) (store.Added, error)
	ResetGraph() (store.Graph, error)
}

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Layout  layout.Config
	View    interaction.ViewConfig
	FPS     int
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// Engine owns the working set: the store, the layout simulation and the
// interaction controller. All access is serialised by one mutex, so the
// ticker and request handlers always see a consistent snapshot.
type Engine struct {
	mu    sync.Mutex
	store Store
	sim   *layout.Simulation
	ctl   *interaction.Controller
	graph store.Graph
	view  interaction.ViewConfig

	log      *zap.Logger
	metrics  *metrics.Collector
	interval time.Duration
	onFrame  func(Frame)

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
	rate      chan time.Duration
}

// New creates an Engine over st. Call Load before serving.
func New(st Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Layout.AlphaDecay == 0 {
		opts.Layout = layout.DefaultConfig()
	}
	if opts.View == (interaction.ViewConfig{}) {
		opts.View = interaction.DefaultViewConfig()
	}

	sim := layout.New(opts.Layout, opts.Logger.Named("layout"))
	return &Engine{
		store:    st,
		sim:      sim,
		ctl:      interaction.NewController(sim, opts.View),
		graph:    store.Graph{Nodes: []graph.Node{}, Links: []graph.Link{}},
		view:     opts.View,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		interval: time.Second / time.Duration(opts.FPS),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		rate:     make(chan time.Duration, 1),
	}
}

// Metrics returns the engine's collector.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// OnFrame registers fn to receive every frame produced by the ticker or by
// an interaction. fn is called without the engine lock held and must not
// block.
func (e *Engine) OnFrame(fn func(Frame)) {
	e.mu.Lock()
	e.onFrame = fn
	e.mu.Unlock()
}

// Load replaces the working set with the store's. On failure the current
// working set is kept and the storage error returned.
func (e *Engine) Load() error {
	g, err := e.store.LoadGraph()
	if err != nil {
		e.storeFailed("load", err)
		return err
	}

	e.mu.Lock()
	err = e.install(g)
	e.mu.Unlock()
	return err
}

// install must be called with e.mu held.
func (e *Engine) install(g store.Graph) error {
	problems, err := e.sim.SetGraph(g.Nodes, g.Links)
	if err != nil {
		return err
	}
	e.metrics.SkippedLinks.Add(float64(len(problems)))
	e.graph = g
	e.ctl.Reset()
	e.sim.SetAlphaTarget(0)
	e.syncMetrics()
	e.log.Info("working set loaded", zap.Int("nodes", len(g.Nodes)), zap.Int("links", len(g.Links)), zap.Int("skipped_links", len(problems)))
	return nil
}

func (e *Engine) storeFailed(op string, err error) {
	e.metrics.StoreErrors.WithLabelValues(op).Inc()
	e.log.Error("store operation failed, keeping last known good graph", zap.String("op", op), zap.Error(err))
}

// Graph returns a copy of the persisted form of the working set.
func (e *Engine) Graph() store.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyGraph(e.graph)
}

func copyGraph(g store.Graph) store.Graph {
	return store.Graph{
		Nodes: append([]graph.Node{}, g.Nodes...),
		Links: append([]graph.Link{}, g.Links...),
	}
}

// AddMoment validates in, persists the new node and link, and places the
// node in the running layout.
func (e *Engine) AddMoment(in AddInput) (store.Added, error) {
	n, l, err := prepare(in)
	if err != nil {
		return store.Added{}, err
	}

	e.mu.Lock()
	_, ok := graph.Find(e.graph.Nodes, l.Target)
	e.mu.Unlock()
	if !ok {
		return store.Added{}, graph.NewInput(fmt.Sprintf("target node %d does not exist", l.Target),
			map[string]string{"target": "Connection must be an existing node"})
	}

	added, err := e.store.AddNodeAndLink(n, l)
	if err != nil {
		if graph.IsStorage(err) {
			e.storeFailed("add", err)
		}
		return store.Added{}, err
	}

	e.mu.Lock()
	if _, err := e.sim.Add(added.Node); err != nil {
		// The store and the layout disagree; rebuild from the store's view.
		e.log.Warn("re-syncing layout after add", zap.Error(err))
		err = e.install(added.Graph)
		e.mu.Unlock()
		return added, err
	}
	if err := e.sim.AddLink(added.Link); err != nil {
		e.metrics.SkippedLinks.Inc()
		e.log.Warn("skipping link", zap.Int("link_source", added.Link.Source), zap.Int("link_target", added.Link.Target),
			zap.String("kind", string(added.Link.Kind)), zap.Error(err))
	}
	e.graph = copyGraph(added.Graph)
	if e.ctl.State().Selected == 0 {
		e.sim.Reheat(e.view.ReheatAlpha)
	}
	e.syncMetrics()
	f, fn := e.frameLocked(), e.onFrame
	e.mu.Unlock()

	e.log.Info("moment added", zap.Int("id", added.Node.ID), zap.String("title", added.Node.Title), zap.Stringer("link", added.Link))
	emit(fn, f)
	return added, nil
}

// Reset restores the seed dataset in the store and the layout.
func (e *Engine) Reset() (store.Graph, error) {
	g, err := e.store.ResetGraph()
	if err != nil {
		e.storeFailed("reset", err)
		return e.Graph(), err
	}

	e.mu.Lock()
	e.sim.UnpinAll()
	err = e.install(g)
	f, fn := e.frameLocked(), e.onFrame
	e.mu.Unlock()
	if err != nil {
		return g, err
	}
	emit(fn, f)
	return copyGraph(g), nil
}

// Related returns node id and every relation touching it.
func (e *Engine) Related(id int) (graph.Node, []graph.Relation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := graph.Find(e.graph.Nodes, id)
	if !ok {
		return graph.Node{}, nil, graph.NewNotFound(fmt.Sprintf("node %d", id))
	}
	rel, err := graph.Related(id, e.graph.Nodes, e.graph.Links)
	return n, rel, err
}

// Handle feeds ev to the interaction controller and applies the resulting
// effects to the layout.
func (e *Engine) Handle(ev interaction.Event) (interaction.Result, error) {
	e.mu.Lock()
	res, err := e.ctl.Handle(ev)
	if err != nil {
		e.mu.Unlock()
		e.metrics.Interactions.WithLabelValues(string(ev.Type), "error").Inc()
		return res, err
	}
	for _, fx := range res.Effects {
		if err := e.apply(fx); err != nil {
			e.log.Warn("interaction effect failed", zap.Stringer("effect", fx), zap.Error(err))
		}
	}
	e.syncMetrics()
	f, fn := e.frameLocked(), e.onFrame
	e.mu.Unlock()

	e.metrics.Interactions.WithLabelValues(string(ev.Type), "ok").Inc()
	emit(fn, f)
	return res, nil
}

// apply must be called with e.mu held.
func (e *Engine) apply(fx interaction.Effect) error {
	switch fx.Kind {
	case interaction.EffectPin:
		return e.sim.Pin(fx.NodeID, fx.X, fx.Y)
	case interaction.EffectUnpin:
		return e.sim.Unpin(fx.NodeID)
	case interaction.EffectUnpinAll:
		e.sim.UnpinAll()
	case interaction.EffectAlphaTarget:
		e.sim.SetAlphaTarget(fx.Alpha)
		if fx.Alpha > 0 && e.ctl.State().Selected == 0 {
			e.sim.Start()
		}
	case interaction.EffectHalt:
		e.sim.Stop()
	case interaction.EffectResume:
		e.sim.Reheat(fx.Alpha)
	}
	// Highlight, dialog and toggle effects only change what View reports.
	return nil
}

// Frame returns the current render frame.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

func (e *Engine) frameLocked() Frame {
	return buildFrame(e.sim.Frame(), e.ctl.View(e.sim.Nodes(), e.sim.Links()))
}

// Tick advances the layout one frame if it is running and reports whether
// anything moved.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	moved := e.sim.Tick()
	if !moved {
		e.mu.Unlock()
		return false
	}
	e.metrics.Steps.Inc()
	e.syncMetrics()
	f, fn := e.frameLocked(), e.onFrame
	e.mu.Unlock()

	emit(fn, f)
	return true
}

// Simulate ticks up to steps times, stopping early once the layout cools,
// and returns the final frame.
func (e *Engine) Simulate(steps int) Frame {
	for i := 0; i < steps; i++ {
		if !e.Tick() {
			break
		}
	}
	return e.Frame()
}

// SetLayoutConfig swaps force parameters on the live simulation and
// reheats it.
func (e *Engine) SetLayoutConfig(cfg layout.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sim.SetConfig(cfg)
	if e.ctl.State().Selected == 0 {
		e.sim.Reheat(cfg.ReheatAlpha)
	}
	e.log.Info("layout parameters updated")
}

// SetViewConfig swaps the highlight opacities and radii used for frames.
func (e *Engine) SetViewConfig(cfg interaction.ViewConfig) {
	e.mu.Lock()
	e.view = cfg
	e.ctl.SetViewConfig(cfg)
	f, fn := e.frameLocked(), e.onFrame
	e.mu.Unlock()

	e.log.Info("view parameters updated")
	emit(fn, f)
}

// SetFPS changes the ticker rate. A running ticker picks it up on its next
// select. Non-positive values are ignored.
func (e *Engine) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	d := time.Second / time.Duration(fps)

	e.mu.Lock()
	defer e.mu.Unlock()
	if d == e.interval {
		return
	}
	e.interval = d
	// Keep only the latest rate for the ticker.
	select {
	case <-e.rate:
	default:
	}
	e.rate <- d
	e.log.Info("frame rate updated", zap.Int("fps", fps))
}

// Interval is the current time between ticks.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

func (e *Engine) syncMetrics() {
	e.metrics.SetLayout(e.sim.Alpha(), e.sim.Running(), len(e.sim.Nodes()), len(e.sim.Links()))
}

func emit(fn func(Frame), f Frame) {
	if fn != nil {
		fn(f)
	}
}

// Start runs the frame ticker until ctx is cancelled or Stop is called.
// Calling Start more than once has no effect.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		go e.run(ctx)
	})
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	interval := e.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("layout ticker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			e.Tick()
		case d := <-e.rate:
			ticker.Reset(d)
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		}
	}
}

// Stop shuts down the ticker and waits for it to exit. Stopping a stopped
// or never-started engine is a no-op.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})
	started := true
	e.startOnce.Do(func() { started = false })
	if started {
		<-e.done
	}
}
