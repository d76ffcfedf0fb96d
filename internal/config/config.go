package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port                  int
	Password              string
	DBPath                string
	ZonesFile             string
	ModelPath             string
	ModelConfigPath       string
	ConfidenceThreshold   float64
	ZoneOnly              bool // discard detections outside all zones instead of labeling generically
	OllamaURL             string
	OllamaModel           string
	SnapshotDirectory     string
	SnapshotBufferLimit   int
	SnapshotFlushInterval int
	LogDirectory          string
}

func Load() *Config {
	return &Config{
		Port:                  getEnvAsInt("PORT", 8080),
		Password:              getEnv("PASSWORD", "homewatch"),
		DBPath:                getEnv("DB_PATH", filepath.Join(".", "data", "visual_memory.db")),
		ZonesFile:             getEnv("ZONES_FILE", filepath.Join(".", "zones.json")),
		ModelPath:             getEnv("MODEL_PATH", filepath.Join(".", "internal", "services", "ai", "frozen_inference_graph.pb")),
		ModelConfigPath:       getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "internal", "services", "ai", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ConfidenceThreshold:   getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.15),
		ZoneOnly:              getEnvAsBool("ZONE_ONLY", false),
		OllamaURL:             getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:           getEnv("OLLAMA_MODEL", "llama3.2"),
		SnapshotDirectory:     getEnv("SNAPSHOT_DIR", filepath.Join(".", "snapshots")),
		SnapshotBufferLimit:   getEnvAsInt("SNAPSHOT_BUFFER_LIMIT", 7),
		SnapshotFlushInterval: getEnvAsInt("SNAPSHOT_FLUSH_INTERVAL", 30),
		LogDirectory:          getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
