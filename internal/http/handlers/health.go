package handlers

import "net/http"

// Health reports process liveness only; it never probes the provider.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "azure-openai-sora",
	})
}
