package handlers

import (
	"io"
	"net/http"

	"homewatch/internal/logger"
	"homewatch/internal/services"
	"homewatch/internal/services/ai"
)

// CameraUploadHandler receives one encoded frame per POST from a
// camera, runs the detector over it and queues the result for the
// ingest pipeline. A full queue drops the frame; the camera will send
// another one momentarily.
func CameraUploadHandler(detector *ai.DetectorService, source *services.ChannelSource, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if r.ContentLength <= 0 {
			http.Error(w, "Invalid content length", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("Error reading frame body: %v", err)
			http.Error(w, "Error reading body", http.StatusBadRequest)
			return
		}

		if !detector.Available() {
			http.Error(w, "Detector not available", http.StatusServiceUnavailable)
			return
		}

		detections, frameSize, err := detector.Detect(body)
		if err != nil {
			logger.Error("Detection failed: %v", err)
			http.Error(w, "Detection failed", http.StatusInternalServerError)
			return
		}

		if !source.Push(services.Frame{Detections: detections, Size: frameSize, Image: body}) {
			logger.Warning("Frame queue full, dropping frame with %d detections", len(detections))
		}

		w.Write([]byte("OK"))
	}
}
