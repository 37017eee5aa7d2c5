package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/jobs"
)

// App is the handler container: it holds the lifecycle controller and the
// logger, nothing else. All job state lives behind the controller.
type App struct {
	Logger infra.Logger
	Jobs   *jobs.Controller
}

func NewApp(logger infra.Logger, controller *jobs.Controller) *App {
	return &App{Logger: logger, Jobs: controller}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}
