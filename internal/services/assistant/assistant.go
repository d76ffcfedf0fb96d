package assistant

import (
	"fmt"
	"strings"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository"
	"homewatch/internal/zones"
)

// AnswerGenerator is the optional natural-language boundary. When it
// is unavailable the assistant answers from the detection log alone.
type AnswerGenerator interface {
	Available() bool
	AnswerObjectQuestion(question string, facts []models.DetectionFact) (string, error)
}

// Assistant answers "what did you last see, and where" questions over
// the detection log, delegating to the answer generator when it is up
// and falling back to a local formatter when it is not.
type Assistant struct {
	log       repository.DetectionLog
	store     *zones.Store
	generator AnswerGenerator
	logger    *logger.Logger
	zoneOnly  bool
}

// Status is a point-in-time summary of the detection memory.
type Status struct {
	OllamaAvailable  bool     `json:"ollama_available"`
	TotalObjects     int      `json:"total_objects_detected"`
	RecentDetections int      `json:"recent_detections"`
	AvailableObjects []string `json:"available_objects"`
	CustomZones      int      `json:"custom_zones"`
	ZoneNames        []string `json:"zone_names"`
	DetectionMode    string   `json:"detection_mode"`
}

// New creates an Assistant over the given detection log and zone store.
func New(log repository.DetectionLog, store *zones.Store, generator AnswerGenerator, zoneOnly bool, logger *logger.Logger) *Assistant {
	return &Assistant{
		log:       log,
		store:     store,
		generator: generator,
		logger:    logger,
		zoneOnly:  zoneOnly,
	}
}

// Ask answers a free-text question about recently seen objects. The
// context window is the last five minutes of detections.
func (a *Assistant) Ask(question string) string {
	recent, err := a.log.Recent(5*time.Minute, 50)
	if err != nil {
		a.logger.Error("Could not read recent detections: %v", err)
		return "I could not read my detection memory. Please try again."
	}

	if len(recent) == 0 {
		return "I haven't detected any objects recently. Make sure the camera is working and objects are visible."
	}

	if a.generator != nil && a.generator.Available() {
		answer, err := a.generator.AnswerObjectQuestion(question, recent)
		if err == nil {
			return answer
		}
		a.logger.Warning("Answer generation failed, falling back to local summary: %v", err)
	}

	return a.simpleAnswer(question, recent)
}

// simpleAnswer is the local fallback: find a known object name in the
// question and report its latest sighting, otherwise list what was
// seen recently.
func (a *Assistant) simpleAnswer(question string, recent []models.DetectionFact) string {
	questionLower := strings.ToLower(question)

	names, err := a.log.DistinctObjectNames()
	if err != nil {
		a.logger.Error("Could not list object names: %v", err)
		names = nil
	}

	var mentioned string
	for _, name := range names {
		if strings.Contains(questionLower, strings.ToLower(name)) {
			mentioned = name
			break
		}
	}

	if mentioned != "" {
		history, err := a.log.History(mentioned, 5)
		if err == nil && len(history) > 0 {
			latest := history[0]
			location := latest.LocationDescription
			if location == "" {
				location = "unknown location"
			}
			return fmt.Sprintf("I last saw %s in the %s at %s with %.0f%% confidence.",
				mentioned, location, latest.Timestamp, latest.Confidence*100)
		}
		return fmt.Sprintf("I don't have recent information about %s.", mentioned)
	}

	seen := make(map[string]bool)
	var recentNames []string
	for _, fact := range recent {
		if !seen[fact.ObjectName] {
			seen[fact.ObjectName] = true
			recentNames = append(recentNames, fact.ObjectName)
		}
		if len(recentNames) == 5 {
			break
		}
	}

	return fmt.Sprintf("I've recently detected these objects: %s. Ask me about any specific object!",
		strings.Join(recentNames, ", "))
}

// Status reports the current state of the detection memory and zones.
func (a *Assistant) Status() Status {
	names, err := a.log.DistinctObjectNames()
	if err != nil {
		a.logger.Error("Could not list object names: %v", err)
	}

	recent, err := a.log.Recent(time.Hour, 50)
	if err != nil {
		a.logger.Error("Could not read recent detections: %v", err)
	}

	zoneSet := a.store.Load()
	zoneNames := make([]string, 0, len(zoneSet))
	for _, zone := range zoneSet {
		zoneNames = append(zoneNames, zone.Name)
	}

	mode := "generic"
	if a.zoneOnly {
		mode = "zone_focused"
	}

	available := false
	if a.generator != nil {
		available = a.generator.Available()
	}

	return Status{
		OllamaAvailable:  available,
		TotalObjects:     len(names),
		RecentDetections: len(recent),
		AvailableObjects: names,
		CustomZones:      len(zoneSet),
		ZoneNames:        zoneNames,
		DetectionMode:    mode,
	}
}
