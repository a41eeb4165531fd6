package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/nodeflow/internal/editor"
	"github.com/gyaneshwarpardhi/nodeflow/internal/graph"
	"github.com/gyaneshwarpardhi/nodeflow/internal/tracker"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	ed  *editor.Editor
	mux *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(ed *editor.Editor) http.Handler {
	h := &Handler{ed: ed, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/nodes", h.insertNode)
	h.mux.HandleFunc("DELETE /v1/nodes/{id}", h.removeNode)
	h.mux.HandleFunc("PUT /v1/nodes/{id}/value", h.setValue)
	h.mux.HandleFunc("GET /v1/nodes/{id}/outputs", h.nodeOutputs)
	h.mux.HandleFunc("GET /v1/nodes/{id}/display", h.nodeDisplay)
	h.mux.HandleFunc("GET /v1/nodes/{id}/closure", h.nodeClosure)
	h.mux.HandleFunc("POST /v1/edges", h.connect)
	h.mux.HandleFunc("DELETE /v1/edges", h.disconnect)
	h.mux.HandleFunc("GET /v1/graph", h.topology)
	h.mux.HandleFunc("GET /v1/graph/dot", h.exportDOT)
	h.mux.HandleFunc("POST /v1/tasks/snapshot", h.snapshotTasks)
	h.mux.HandleFunc("GET /v1/tasks", h.listTasks)
	h.mux.HandleFunc("POST /v1/tasks/{id}/complete", h.completeTask)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// httpStatus maps core errors to HTTP codes. Cycle and type rejections are
// expected user-facing outcomes, not server faults.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrUnknownNode),
		errors.Is(err, tracker.ErrNotPending):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrPortOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, graph.ErrTypeMismatch),
		errors.Is(err, graph.ErrWouldCreateCycle),
		errors.Is(err, graph.ErrNotSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrNoSnapshot):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type insertNodeRequest struct {
	Kind   string   `json:"kind"`
	Number *float64 `json:"number,omitempty"`
	Text   *string  `json:"text,omitempty"`
}

// POST /v1/nodes — insert a catalog node, optionally with an initial literal.
func (h *Handler) insertNode(w http.ResponseWriter, r *http.Request) {
	var req insertNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	id, err := h.ed.InsertNode(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := literalValue(req.Number, req.Text); v != nil {
		if err := h.ed.SetLiteral(id, v); err != nil {
			// The node exists but the literal does not fit its kind; undo.
			_ = h.ed.RemoveNode(id)
			writeError(w, httpStatus(err), err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// DELETE /v1/nodes/{id} — remove a node and its incident edges.
func (h *Handler) removeNode(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(r.PathValue("id"))
	if err := h.ed.RemoveNode(id); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

type valueRequest struct {
	Number *float64 `json:"number,omitempty"`
	Text   *string  `json:"text,omitempty"`
}

// PUT /v1/nodes/{id}/value — set a source literal; triggers seeded evaluation.
func (h *Handler) setValue(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(r.PathValue("id"))
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	v := literalValue(req.Number, req.Text)
	if v == nil {
		writeError(w, http.StatusBadRequest, "one of number/text is required")
		return
	}
	if err := h.ed.SetLiteral(id, v); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// GET /v1/nodes/{id}/outputs — cached values on every output port.
func (h *Handler) nodeOutputs(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(r.PathValue("id"))
	nodes, _ := h.ed.Topology()
	for _, n := range nodes {
		if n.ID == id {
			writeJSON(w, http.StatusOK, map[string]interface{}{"outputs": n.Values})
			return
		}
	}
	writeError(w, http.StatusNotFound, graph.ErrUnknownNode.Error())
}

// GET /v1/nodes/{id}/display — what the node's first input port shows
// (read-through; this is how a sink renders).
func (h *Handler) nodeDisplay(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(r.PathValue("id"))
	v, err := h.ed.Display(id, 0)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": v})
}

// GET /v1/nodes/{id}/closure — downstream closure, inclusive.
func (h *Handler) nodeClosure(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(r.PathValue("id"))
	closure, err := h.ed.Closure(id)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"closure": closure})
}

type edgeRequest struct {
	FromNode string `json:"from_node"`
	FromPort int    `json:"from_port"`
	ToNode   string `json:"to_node"`
	ToPort   int    `json:"to_port"`
}

func (req *edgeRequest) ports() (src, dst graph.PortRef) {
	src = graph.PortRef{Node: graph.NodeID(req.FromNode), Port: req.FromPort}
	dst = graph.PortRef{Node: graph.NodeID(req.ToNode), Port: req.ToPort}
	return src, dst
}

// POST /v1/edges — validated connect.
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	src, dst := req.ports()
	if err := h.ed.Connect(src, dst); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"connected": true})
}

// DELETE /v1/edges — disconnect (no-op if the edge is absent).
func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	src, dst := req.ports()
	h.ed.Disconnect(src, dst)
	writeJSON(w, http.StatusOK, map[string]bool{"disconnected": true})
}

// GET /v1/graph — full topology with cached output values.
func (h *Handler) topology(w http.ResponseWriter, r *http.Request) {
	nodes, edges := h.ed.Topology()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nodes": nodes,
		"edges": edges,
	})
}

// GET /v1/graph/dot — Graphviz export of the topology.
func (h *Handler) exportDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.ed.DOT()))
}

// POST /v1/tasks/snapshot — construct the tracker from the current topology.
func (h *Handler) snapshotTasks(w http.ResponseWriter, r *http.Request) {
	ready, blocked := h.ed.SnapshotTracker()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ready":   ready,
		"blocked": blocked,
	})
}

// GET /v1/tasks — current ready/blocked classification.
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	ready, blocked, err := h.ed.TrackerState()
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready":   ready,
		"blocked": blocked,
	})
}

// POST /v1/tasks/{id}/complete — report a completion; returns newly ready tasks.
func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	id := tracker.TaskID(r.PathValue("id"))
	newlyReady, err := h.ed.CompleteTask(id)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	if newlyReady == nil {
		newlyReady = []tracker.TaskID{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"newly_ready": newlyReady})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	nodes, edges := h.ed.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"nodes":  nodes,
		"edges":  edges,
	})
}

func literalValue(num *float64, text *string) *graph.Value {
	switch {
	case num != nil:
		return graph.NumberValue(*num)
	case text != nil:
		return graph.StringValue(*text)
	}
	return nil
}
