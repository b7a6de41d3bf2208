package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gyaneshwarpardhi/depgraph/internal/board"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/interaction"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrBoardNotFound), errors.Is(err, dag.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, dag.ErrDuplicateNode),
		errors.Is(err, interaction.ErrBusy),
		errors.Is(err, interaction.ErrNotDragging):
		return http.StatusConflict
	case errors.Is(err, dag.ErrInvalidNode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}
