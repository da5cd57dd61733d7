package graph

import (
	"fmt"
	"sort"
)

// MaxID returns the largest node id, or 0 for an empty set.
func MaxID(nodes []Node) int {
	top := 0
	for _, n := range nodes {
		if n.ID > top {
			top = n.ID
		}
	}
	return top
}

// ValidateNodes checks that every id is positive and unique.
func ValidateNodes(nodes []Node) error {
	seen := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if n.ID <= 0 {
			return NewValidation(fmt.Sprintf("node %q has non-positive id %d", n.Title, n.ID))
		}
		if seen[n.ID] {
			return NewValidation(fmt.Sprintf("duplicate node id %d", n.ID))
		}
		seen[n.ID] = true
	}
	return nil
}

// CheckLinks splits links into those whose endpoints both resolve to a node
// in ids and a validation error for each one that does not. Unknown kinds are
// also rejected.
func CheckLinks(ids map[int]bool, links []Link) ([]Link, []error) {
	valid := make([]Link, 0, len(links))
	var problems []error
	for _, l := range links {
		switch {
		case !ids[l.Source]:
			problems = append(problems, NewValidation(fmt.Sprintf("link %s: unknown source %d", l, l.Source)))
		case !ids[l.Target]:
			problems = append(problems, NewValidation(fmt.Sprintf("link %s: unknown target %d", l, l.Target)))
		case !l.Kind.Valid():
			problems = append(problems, NewValidation(fmt.Sprintf("link %s: unknown kind %q", l, l.Kind)))
		default:
			valid = append(valid, l)
		}
	}
	return valid, problems
}

// IDSet returns the ids of nodes as a set.
func IDSet(nodes []Node) map[int]bool {
	ids := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	return ids
}

// Neighborhood is the result of a single pass over the links touching a node.
type Neighborhood struct {
	Connected map[int]bool
	ByKind    map[Kind]int
}

// Neighbors collects, in one pass over links, the ids directly connected to
// id in either direction and the number of touching links per kind. The node
// itself is never part of Connected, even through a self-loop.
func Neighbors(id int, links []Link) Neighborhood {
	nb := Neighborhood{
		Connected: make(map[int]bool),
		ByKind:    make(map[Kind]int),
	}
	for _, l := range links {
		if !l.Touches(id) {
			continue
		}
		nb.ByKind[l.Kind]++
		if other := l.Other(id); other != id {
			nb.Connected[other] = true
		}
	}
	return nb
}

// SortedIDs returns the connected ids in ascending order.
func (nb Neighborhood) SortedIDs() []int {
	ids := make([]int, 0, len(nb.Connected))
	for id := range nb.Connected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Direction of a relation as seen from the node it was computed for.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// Relation is one link touching a node, resolved to the node on the other end.
type Relation struct {
	Node      Node      `json:"node"`
	Kind      Kind      `json:"kind"`
	Direction Direction `json:"direction"`
}

// Related lists every link touching id, resolved against nodes, in link
// order. Links whose other endpoint is missing are skipped.
func Related(id int, nodes []Node, links []Link) ([]Relation, error) {
	byID := make(map[int]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if _, ok := byID[id]; !ok {
		return nil, NewNotFound(fmt.Sprintf("node %d", id))
	}

	var out []Relation
	for _, l := range links {
		if !l.Touches(id) {
			continue
		}
		other, ok := byID[l.Other(id)]
		if !ok {
			continue
		}
		dir := Incoming
		if l.Source == id {
			dir = Outgoing
		}
		out = append(out, Relation{Node: other, Kind: l.Kind, Direction: dir})
	}
	return out, nil
}

// Find returns the node with the given id.
func Find(nodes []Node, id int) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
