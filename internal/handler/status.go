package handler

import (
	"net/http"
)

type StatusHandler struct {
	appName string
	appEnv  string
}

func NewStatusHandler(appName, appEnv string) *StatusHandler {
	return &StatusHandler{appName: appName, appEnv: appEnv}
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"app":    h.appName,
		"env":    h.appEnv,
	})
}
