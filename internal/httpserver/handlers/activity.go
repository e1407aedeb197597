package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/hubmarks/internal/activity"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
)

type activityResponse struct {
	Events []activity.Event `json:"events"`
}

// Activity lists recent mutations, newest first. ?limit= caps the result.
func Activity(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer", d.Logger)
				return
			}
			limit = n
		}

		events := []activity.Event{}
		if d.Activity != nil {
			events = d.Activity.Recent(limit)
		}
		writeJSON(w, http.StatusOK, activityResponse{Events: events}, d.Logger)
	}
}
