package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/recognition/internal/engine"
	"github.com/lazypower/recognition/internal/graph"
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/store"
)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Graph())
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req engine.AddInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	added, err := s.engine.AddMoment(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be an integer"})
		return
	}

	n, rel, err := s.engine.Related(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rel == nil {
		rel = []graph.Relation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":    n,
		"related": rel,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.Reset()
	if err != nil {
		// Still hand back the working set the engine kept.
		status := http.StatusInternalServerError
		if graph.IsStorage(err) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"error": err.Error(), "nodes": g.Nodes, "links": g.Links})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Frame())
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var ev interaction.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if _, err := interaction.ParseEventType(string(ev.Type)); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Handle(ev)
	if err != nil {
		writeError(w, err)
		return
	}
	out := map[string]any{
		"state":   res.State,
		"effects": res.Effects,
	}
	if res.Tooltip != nil {
		out["tooltip"] = map[string]any{
			"node_id":         res.Tooltip.NodeID,
			"title":           res.Tooltip.Title,
			"connected_count": res.Tooltip.ConnectedCount,
			"by_kind":         res.Tooltip.ByKind,
			"summary":         res.Tooltip.Summary(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	evs, err := s.db.RecentEvents(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if evs == nil {
		evs = []store.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evs})
}
