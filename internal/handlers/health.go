package handlers

import "net/http"

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// Healthz reports service liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
