package store

import (
	"strings"
	"testing"

	"github.com/lazypower/recognition/internal/graph"
)

func TestEventsRecorded(t *testing.T) {
	db := testDB(t)

	if _, err := db.ResetGraph(); err != nil {
		t.Fatalf("ResetGraph: %v", err)
	}
	if _, err := db.AddNodeAndLink(graph.Node{Title: "New moment", Content: "c"}, graph.Link{Target: 2, Kind: graph.Resonance}); err != nil {
		t.Fatalf("add: %v", err)
	}

	evs, err := db.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].Kind != EventAdd || evs[0].NodeID == nil || *evs[0].NodeID != 6 {
		t.Errorf("newest event = %+v", evs[0])
	}
	if !strings.Contains(evs[0].Detail, "New moment") {
		t.Errorf("detail = %q", evs[0].Detail)
	}
	if evs[1].Kind != EventReset || evs[1].NodeID != nil {
		t.Errorf("oldest event = %+v", evs[1])
	}
}

func TestEventDetailTruncated(t *testing.T) {
	db := testDB(t)
	if err := recordEvent(db, EventReset, nil, strings.Repeat("x", 5000)); err != nil {
		t.Fatalf("recordEvent: %v", err)
	}
	evs, err := db.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(evs[0].Detail) != maxDetailSize {
		t.Errorf("detail length = %d, want %d", len(evs[0].Detail), maxDetailSize)
	}
}
