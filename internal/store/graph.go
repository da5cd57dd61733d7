package store

import (
	"encoding/json"
	"fmt"

	"github.com/lazypower/recognition/internal/graph"
)

// Keys the two graph documents are stored under.
const (
	NodesKey = "recognitionField_nodes"
	LinksKey = "recognitionField_links"
)

// Graph is the persisted working set.
type Graph struct {
	Nodes []graph.Node `json:"nodes" yaml:"nodes"`
	Links []graph.Link `json:"links" yaml:"links"`
}

// Added is the result of AddNodeAndLink.
type Added struct {
	Graph
	Node graph.Node `json:"node" yaml:"node"`
	Link graph.Link `json:"link" yaml:"link"`
}

// LoadGraph returns the stored working set. An empty store yields the seed
// dataset, which is not written back until the first add or reset. A stored
// document that cannot be decoded is a storage error.
func (db *DB) LoadGraph() (Graph, error) {
	return loadGraph(db)
}

func loadGraph(q querier) (Graph, error) {
	rawNodes, ok, err := getKV(q, NodesKey)
	if err != nil {
		return Graph{}, graph.NewStorage("load nodes", err)
	}
	if !ok {
		nodes, links := graph.Seed()
		return Graph{Nodes: nodes, Links: links}, nil
	}

	var g Graph
	if err := json.Unmarshal([]byte(rawNodes), &g.Nodes); err != nil {
		return Graph{}, graph.NewStorage("decode nodes", err)
	}

	rawLinks, ok, err := getKV(q, LinksKey)
	if err != nil {
		return Graph{}, graph.NewStorage("load links", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(rawLinks), &g.Links); err != nil {
			return Graph{}, graph.NewStorage("decode links", err)
		}
	}
	if g.Nodes == nil {
		g.Nodes = []graph.Node{}
	}
	if g.Links == nil {
		g.Links = []graph.Link{}
	}
	return g, nil
}

func saveGraph(q querier, g Graph) error {
	nodes, err := json.Marshal(g.Nodes)
	if err != nil {
		return graph.NewStorage("encode nodes", err)
	}
	links, err := json.Marshal(g.Links)
	if err != nil {
		return graph.NewStorage("encode links", err)
	}
	if err := setKV(q, NodesKey, string(nodes)); err != nil {
		return graph.NewStorage("save nodes", err)
	}
	if err := setKV(q, LinksKey, string(links)); err != nil {
		return graph.NewStorage("save links", err)
	}
	return nil
}

// AddNodeAndLink appends n and l to the stored working set. The node always
// receives id max(existing)+1 and the link's source is rewritten to that id,
// whatever either carried on the way in. The link's target must exist.
func (db *DB) AddNodeAndLink(n graph.Node, l graph.Link) (Added, error) {
	tx, err := db.Begin()
	if err != nil {
		return Added{}, graph.NewStorage("begin add", err)
	}
	defer tx.Rollback()

	g, err := loadGraph(tx)
	if err != nil {
		return Added{}, err
	}
	if _, ok := graph.Find(g.Nodes, l.Target); !ok {
		return Added{}, graph.NewInput(fmt.Sprintf("target node %d does not exist", l.Target),
			map[string]string{"target": "unknown"})
	}
	if !l.Kind.Valid() {
		return Added{}, graph.NewInput(fmt.Sprintf("unknown link kind %q", l.Kind),
			map[string]string{"kind": "oneof"})
	}

	n.ID = graph.MaxID(g.Nodes) + 1
	l.Source = n.ID
	g.Nodes = append(g.Nodes, graph.Node{ID: n.ID, Title: n.Title, Content: n.Content})
	g.Links = append(g.Links, l)

	if err := saveGraph(tx, g); err != nil {
		return Added{}, err
	}
	id := int64(n.ID)
	if err := recordEvent(tx, EventAdd, &id, fmt.Sprintf("%s; %s", n.Title, l)); err != nil {
		return Added{}, graph.NewStorage("record add", err)
	}
	if err := tx.Commit(); err != nil {
		return Added{}, graph.NewStorage("commit add", err)
	}
	return Added{Graph: g, Node: g.Nodes[len(g.Nodes)-1], Link: l}, nil
}

// ResetGraph overwrites the stored working set with the seed dataset.
func (db *DB) ResetGraph() (Graph, error) {
	nodes, links := graph.Seed()
	g := Graph{Nodes: nodes, Links: links}

	tx, err := db.Begin()
	if err != nil {
		return Graph{}, graph.NewStorage("begin reset", err)
	}
	defer tx.Rollback()

	if err := saveGraph(tx, g); err != nil {
		return Graph{}, err
	}
	if err := recordEvent(tx, EventReset, nil, fmt.Sprintf("%d nodes, %d links", len(nodes), len(links))); err != nil {
		return Graph{}, graph.NewStorage("record reset", err)
	}
	if err := tx.Commit(); err != nil {
		return Graph{}, graph.NewStorage("commit reset", err)
	}
	return g, nil
}
