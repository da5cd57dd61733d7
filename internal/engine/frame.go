package engine

import (
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/layout"
)

// NodeView is a node as the renderer draws it.
type NodeView struct {
	layout.NodeFrame
	Radius       float64 `json:"radius"`
	LabelOpacity float64 `json:"label_opacity"`
	Highlighted  bool    `json:"highlighted"`
}

// LinkView is a link as the renderer draws it.
type LinkView struct {
	layout.LinkFrame
	Opacity float64 `json:"opacity"`
}

// Frame is everything the rendering collaborator needs for one frame.
type Frame struct {
	Step     int        `json:"step"`
	Alpha    float64    `json:"alpha"`
	Running  bool       `json:"running"`
	Hovered  int        `json:"hovered"`
	Selected int        `json:"selected"`
	ShowAll  bool       `json:"show_all"`
	Nodes    []NodeView `json:"nodes"`
	Links    []LinkView `json:"links"`
}

// buildFrame merges positions with interaction state. lf.Links and
// v.LinkOpacity are both in simulation link order.
func buildFrame(lf layout.Frame, v interaction.View) Frame {
	f := Frame{
		Step:     lf.Step,
		Alpha:    lf.Alpha,
		Running:  lf.Running,
		Hovered:  v.Hovered,
		Selected: v.Selected,
		ShowAll:  v.ShowAll,
		Nodes:    make([]NodeView, 0, len(lf.Nodes)),
		Links:    make([]LinkView, 0, len(lf.Links)),
	}
	for _, n := range lf.Nodes {
		f.Nodes = append(f.Nodes, NodeView{
			NodeFrame:    n,
			Radius:       v.NodeRadius[n.ID],
			LabelOpacity: v.LabelOpacity[n.ID],
			Highlighted:  v.Highlighted[n.ID],
		})
	}
	for i, l := range lf.Links {
		lv := LinkView{LinkFrame: l}
		if i < len(v.LinkOpacity) {
			lv.Opacity = v.LinkOpacity[i]
		}
		f.Links = append(f.Links, lv)
	}
	return f
}
