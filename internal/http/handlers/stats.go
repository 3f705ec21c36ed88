package handlers

import (
	"net/http"

	"server/internal/sqlinline"
)

// StatsSummary is an operator view over the usage log.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	if a.SQL == nil {
		a.error(w, http.StatusNotImplemented, "unavailable", "stats require a database")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QTTSStatsSummary)
	var totalActions, actionsLast24h, distinctUsers int64
	if err := row.Scan(&totalActions, &actionsLast24h, &distinctUsers); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_actions":    totalActions,
		"actions_last_24h": actionsLast24h,
		"distinct_users":   distinctUsers,
	})
}
