package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/depgraph/internal/board"
	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/interaction"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	boards *board.Manager
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(boards *board.Manager, loader *config.Loader) http.Handler {
	h := &Handler{boards: boards, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/boards", h.createBoard)
	h.mux.HandleFunc("GET /v1/boards", h.listBoards)
	h.mux.HandleFunc("GET /v1/boards/{board}", h.getBoard)
	h.mux.HandleFunc("DELETE /v1/boards/{board}", h.deleteBoard)

	h.mux.HandleFunc("POST /v1/boards/{board}/nodes", h.addNode)
	h.mux.HandleFunc("DELETE /v1/boards/{board}/nodes/{node}", h.removeNode)
	h.mux.HandleFunc("PUT /v1/boards/{board}/nodes/{node}/position", h.moveNode)
	h.mux.HandleFunc("GET /v1/boards/{board}/nodes/{node}/impact", h.nodeImpact)

	h.mux.HandleFunc("POST /v1/boards/{board}/edges", h.proposeEdge)
	h.mux.HandleFunc("DELETE /v1/boards/{board}/edges", h.removeEdge)
	h.mux.HandleFunc("GET /v1/boards/{board}/cycle-check", h.cycleCheck)

	h.mux.HandleFunc("GET /v1/boards/{board}/impact", h.impactReport)
	h.mux.HandleFunc("GET /v1/boards/{board}/blockers", h.blockers)
	h.mux.HandleFunc("POST /v1/boards/{board}/layout", h.layout)

	h.mux.HandleFunc("POST /v1/boards/{board}/drag/start", h.dragStart)
	h.mux.HandleFunc("POST /v1/boards/{board}/drag/end", h.dragEnd)
	h.mux.HandleFunc("POST /v1/boards/{board}/drag/cancel", h.dragCancel)
	h.mux.HandleFunc("POST /v1/boards/{board}/rejection/dismiss", h.dismiss)
	h.mux.HandleFunc("GET /v1/boards/{board}/interaction", h.interaction)

	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// board resolves the {board} path value, writing a 404 when it is unknown.
func (h *Handler) board(w http.ResponseWriter, r *http.Request) (*board.Board, bool) {
	b, err := h.boards.Get(r.PathValue("board"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return b, true
}

// POST /v1/boards: start a session seeded from the board file.
func (h *Handler) createBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	b, err := h.boards.Create(req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.Snapshot())
}

func (h *Handler) listBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"boards": h.boards.List()})
}

// GET /v1/boards/{board}: nodes and edges for rendering.
func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (h *Handler) deleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.boards.Delete(r.PathValue("board")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nodeRequest struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         task.Status   `json:"status"`
	Priority       task.Priority `json:"priority"`
	AssignedTo     *task.User    `json:"assigned_to"`
	EstimatedHours float64       `json:"estimated_hours"`
	Position       dag.Position  `json:"position"`
}

// POST /v1/boards/{board}/nodes: add a task. A missing id is generated.
func (h *Handler) addNode(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = task.StatusTodo
	}
	if req.Priority == "" {
		req.Priority = task.PriorityMedium
	}
	if !req.Status.Valid() || !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q or priority %q", req.Status, req.Priority))
		return
	}
	if req.EstimatedHours < 0 {
		writeError(w, http.StatusBadRequest, "estimated_hours must not be negative")
		return
	}
	n, err := b.AddNode(task.Task{
		ID:             req.ID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedTo:     req.AssignedTo,
		EstimatedHours: req.EstimatedHours,
	}, req.Position)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// DELETE /v1/boards/{board}/nodes/{node}: remove a task and its edges.
func (h *Handler) removeNode(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	if err := b.RemoveNode(r.PathValue("node")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moveNode(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	var pos dag.Position
	if !decode(w, r, &pos) {
		return
	}
	if err := b.SetPosition(r.PathValue("node"), pos); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// GET /v1/boards/{board}/nodes/{node}/impact
func (h *Handler) nodeImpact(w http.ResponseWriter, r *http.Request) {
	res, err := h.boards.Analyze(r.PathValue("board"), r.PathValue("node"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type edgeRequest struct {
	From string `json:"from"` // prerequisite
	To   string `json:"to"`   // dependent
}

// POST /v1/boards/{board}/edges: propose that To depends on From.
// A rejected proposal answers 409 with the explanation.
func (h *Handler) proposeEdge(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	var req edgeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	res, err := b.ProposeEdge(req.From, req.To)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeProposal(w, res)
}

// DELETE /v1/boards/{board}/edges?dependent=&prerequisite=
func (h *Handler) removeEdge(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dependent, prerequisite := q.Get("dependent"), q.Get("prerequisite")
	if dependent == "" || prerequisite == "" {
		writeError(w, http.StatusBadRequest, "dependent and prerequisite are required")
		return
	}
	removed, err := b.RemoveEdge(dependent, prerequisite)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// GET /v1/boards/{board}/cycle-check?from=&to=: pre-flight check for a drag.
func (h *Handler) cycleCheck(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	path, err := b.CycleCheck(from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"would_create_cycle": path != nil,
		"path":               path,
	})
}

// GET /v1/boards/{board}/impact: analysis of every node.
func (h *Handler) impactReport(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("board")
	report, err := h.boards.ImpactReport(r.Context(), boardID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"board":    boardID,
		"analyses": report,
	})
}

func (h *Handler) blockers(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blockers": b.Blockers()})
}

// POST /v1/boards/{board}/layout: arrange nodes by dependency layer.
func (h *Handler) layout(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": b.AutoLayout()})
}

type nodeRef struct {
	Node string `json:"node"`
}

// POST /v1/boards/{board}/drag/start {"node": id}: pointer down on an output connector.
func (h *Handler) dragStart(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	var req nodeRef
	if !decode(w, r, &req) {
		return
	}
	if err := b.BeginDrag(req.Node); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Interaction())
}

// POST /v1/boards/{board}/drag/end {"node": id}: pointer up. An empty node is empty canvas.
func (h *Handler) dragEnd(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	var req nodeRef
	if !decode(w, r, &req) {
		return
	}
	res, err := b.EndDrag(req.Node)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeProposal(w, res)
}

func (h *Handler) dragCancel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.CancelDrag())
}

// POST /v1/boards/{board}/rejection/dismiss: acknowledge the cycle explanation.
func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": b.Dismiss()})
}

func (h *Handler) interaction(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Interaction())
}

// POST /v1/config/reload: re-read the board file. New sessions use the new seed.
// The manager picks the file up through the loader's OnChange hook.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if errors.Is(err, config.ErrRejected) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":    true,
		"tasks_count": len(cfg.Tasks),
		"rules_count": len(h.boards.Analyzer().Rules()),
	})
}

// GET /healthz: always 200 (liveness).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the analysis queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.boards.QueueUtilization()
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func writeProposal(w http.ResponseWriter, res board.ProposalResult) {
	status := http.StatusOK
	if res.Outcome == interaction.OutcomeRejected {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}
