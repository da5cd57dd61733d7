package layout

import "github.com/lazypower/recognition/internal/graph"

// NodeFrame is the per-node render payload.
type NodeFrame struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned"`
}

// LinkFrame is the per-link render payload.
type LinkFrame struct {
	Source  int        `json:"source"`
	Target  int        `json:"target"`
	SourceX float64    `json:"sourceX"`
	SourceY float64    `json:"sourceY"`
	TargetX float64    `json:"targetX"`
	TargetY float64    `json:"targetY"`
	Kind    graph.Kind `json:"kind"`
	Color   string     `json:"color"`
	Dashed  bool       `json:"dashed"`
}

// Frame is a snapshot of positions for one rendered frame.
type Frame struct {
	Step    int         `json:"step"`
	Alpha   float64     `json:"alpha"`
	Running bool        `json:"running"`
	Nodes   []NodeFrame `json:"nodes"`
	Links   []LinkFrame `json:"links"`
}

// Frame copies the current positions into a render snapshot.
func (s *Simulation) Frame() Frame {
	f := Frame{
		Step:    s.steps,
		Alpha:   s.alpha,
		Running: s.running,
		Nodes:   make([]NodeFrame, 0, len(s.nodes)),
		Links:   make([]LinkFrame, 0, len(s.links)),
	}
	for _, nd := range s.nodes {
		f.Nodes = append(f.Nodes, NodeFrame{ID: nd.ID, Title: nd.Title, X: nd.X, Y: nd.Y, Pinned: nd.Pinned})
	}
	for _, l := range s.links {
		src, okS := s.index[l.Source]
		tgt, okT := s.index[l.Target]
		if !okS || !okT {
			continue
		}
		f.Links = append(f.Links, LinkFrame{
			Source:  l.Source,
			Target:  l.Target,
			SourceX: src.X,
			SourceY: src.Y,
			TargetX: tgt.X,
			TargetY: tgt.Y,
			Kind:    l.Kind,
			Color:   l.Kind.Color(),
			Dashed:  l.Kind.Dashed(),
		})
	}
	return f
}
