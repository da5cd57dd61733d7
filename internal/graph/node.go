package graph

import (
	"fmt"
	"strings"
)

// Node is a recognition moment. Only ID, Title and Content are persisted;
// the remaining fields are simulation state owned by the layout engine.
type Node struct {
	ID      int    `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`

	X      float64 `json:"-" yaml:"-"`
	Y      float64 `json:"-" yaml:"-"`
	VX     float64 `json:"-" yaml:"-"`
	VY     float64 `json:"-" yaml:"-"`
	Pinned bool    `json:"-" yaml:"-"`

	OrbitalRadius float64 `json:"-" yaml:"-"`
	OrbitalSpeed  float64 `json:"-" yaml:"-"`
	OrbitalPhase  float64 `json:"-" yaml:"-"`
}

// Kind is the thematic relation carried by a link.
type Kind string

const (
	Resonance Kind = "resonance"
	Tension   Kind = "tension"
	Evolution Kind = "evolution"
)

// Kinds lists every link kind in display order.
var Kinds = []Kind{Resonance, Tension, Evolution}

var kindColors = map[Kind]string{
	Resonance: "#f4a261",
	Tension:   "#e76f51",
	Evolution: "#8a5cf5",
}

var kindDescriptions = map[Kind]string{
	Resonance: "concepts that echo and amplify each other",
	Tension:   "productive contradictions creating creative friction",
	Evolution: "transformation of concepts over time",
}

// ParseKind normalises s into a Kind. An empty string yields Resonance,
// matching the default of the add-node form.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Resonance, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", NewValidation(fmt.Sprintf("unknown link kind %q", s))
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindColors[k]
	return ok
}

// Color is the stroke colour used when rendering links of this kind.
func (k Kind) Color() string { return kindColors[k] }

// Description is the human-readable meaning of the kind.
func (k Kind) Description() string { return kindDescriptions[k] }

// Dashed reports whether links of this kind render with a dashed stroke.
func (k Kind) Dashed() bool { return k == Evolution }

// Link is a typed relation between two node ids.
type Link struct {
	Source int  `json:"source" yaml:"source"`
	Target int  `json:"target" yaml:"target"`
	Kind   Kind `json:"type" yaml:"type"`
}

// Touches reports whether id is either endpoint of l.
func (l Link) Touches(id int) bool {
	return l.Source == id || l.Target == id
}

// Other returns the endpoint of l opposite id.
func (l Link) Other(id int) int {
	if l.Source == id {
		return l.Target
	}
	return l.Source
}

func (l Link) String() string {
	return fmt.Sprintf("%d -[%s]-> %d", l.Source, l.Kind, l.Target)
}
