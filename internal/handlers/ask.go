package handlers

import (
	"encoding/json"
	"net/http"

	"homewatch/internal/services"
	"homewatch/internal/services/assistant"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// AskHandler answers free-text questions about detection memory.
func AskHandler(a *assistant.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
			http.Error(w, "Expected JSON body with 'question'", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, askResponse{Answer: a.Ask(req.Question)})
	}
}

// StatusHandler reports the assistant's view of the system plus the
// ingest worker state.
func StatusHandler(a *assistant.Assistant, pipeline *services.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Running bool `json:"is_running"`
			assistant.Status
		}{
			Running: pipeline.Running(),
			Status:  a.Status(),
		}
		writeJSON(w, http.StatusOK, payload)
	}
}
