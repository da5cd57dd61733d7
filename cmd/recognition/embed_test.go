package main

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedPage(t *testing.T) {
	data, err := fs.ReadFile(uiDist, "ui/index.html")
	if err != nil {
		t.Fatalf("read embedded page: %v", err)
	}
	page := string(data)

	for _, want := range []string{
		"/api/events",
		"/api/interactions",
		"/api/nodes",
		"/api/reset",
		"d.related",
		"'deselect'",
		"'central_toggle'",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not reference %s", want)
		}
	}

	// Node elements are updated in place; rebuilding them every frame
	// swallows clicks while the layout is moving.
	if strings.Contains(page, "nodesG.innerHTML") {
		t.Error("page rebuilds node elements each frame")
	}
	if !strings.Contains(page, "if (!moved) openDialog(id)") {
		t.Error("selection is not driven from pointer release")
	}
}
