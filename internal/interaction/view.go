package interaction

import "github.com/lazypower/recognition/internal/graph"

// ViewConfig holds the opacities and radii used when rendering interaction
// state, and the alpha the layout is reheated to by drags and deselection.
type ViewConfig struct {
	HoverLink   float64
	HoverLabel  float64
	DimLink     float64
	DimLabel    float64
	NodeRadius  float64
	HoverRadius float64
	ReheatAlpha float64
}

// DefaultViewConfig matches the stock page.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		HoverLink:   0.8,
		HoverLabel:  1,
		DimLink:     0.2,
		DimLabel:    0.4,
		NodeRadius:  12,
		HoverRadius: 15,
		ReheatAlpha: 0.3,
	}
}

// View is the highlight state for one frame. Link opacities are parallel to
// the links passed to Controller.View.
type View struct {
	Hovered      int             `json:"hovered"`
	Selected     int             `json:"selected"`
	ShowAll      bool            `json:"show_all"`
	Highlighted  map[int]bool    `json:"highlighted"`
	LinkOpacity  []float64       `json:"link_opacity"`
	LabelOpacity map[int]float64 `json:"label_opacity"`
	NodeRadius   map[int]float64 `json:"node_radius"`
}

// View computes opacities for nodes and links. With nothing hovered every
// link and label sits at the resting opacity: hidden, or dim when show-all
// is on. Hovering lifts the node, its neighbours and its links.
func (c *Controller) View(nodes []*graph.Node, links []graph.Link) View {
	restLink, restLabel := 0.0, 0.0
	if c.state.ShowAll {
		restLink, restLabel = c.cfg.DimLink, c.cfg.DimLabel
	}

	v := View{
		Hovered:      c.state.Hovered,
		Selected:     c.state.Selected,
		ShowAll:      c.state.ShowAll,
		Highlighted:  make(map[int]bool),
		LinkOpacity:  make([]float64, len(links)),
		LabelOpacity: make(map[int]float64, len(nodes)),
		NodeRadius:   make(map[int]float64, len(nodes)),
	}

	h := c.state.Hovered
	if h != 0 {
		v.Highlighted = graph.Neighbors(h, links).Connected
		v.Highlighted[h] = true
	}
	for i, l := range links {
		v.LinkOpacity[i] = restLink
		if h != 0 && l.Touches(h) {
			v.LinkOpacity[i] = c.cfg.HoverLink
		}
	}
	for _, nd := range nodes {
		v.LabelOpacity[nd.ID] = restLabel
		v.NodeRadius[nd.ID] = c.cfg.NodeRadius
		if v.Highlighted[nd.ID] {
			v.LabelOpacity[nd.ID] = c.cfg.HoverLabel
		}
		if nd.ID == h {
			v.NodeRadius[nd.ID] = c.cfg.HoverRadius
		}
	}
	return v
}
