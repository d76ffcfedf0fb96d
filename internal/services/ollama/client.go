package ollama

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"homewatch/internal/models"
)

const systemPrompt = `You are an AI home assistant that helps users find objects in their home.
You have access to visual memory data about objects that have been detected by cameras.

When answering questions about object locations:
1. Be specific about when and where objects were seen
2. Mention confidence levels if relevant
3. Provide helpful suggestions if objects haven't been seen recently
4. Be conversational and helpful
5. If you don't have information about an object, say so clearly

Context about recent object detections:
`

// Client talks to a local Ollama instance for natural-language answers
// about detection memory. The service may be down; callers probe
// Available and fall back to local formatting when it is.
type Client struct {
	baseURL   string
	modelName string
	http      *http.Client
}

// NewClient creates a client for the given Ollama base URL and model.
func NewClient(baseURL, modelName string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		modelName: modelName,
		http:      &http.Client{},
	}
}

// Available reports whether the Ollama service answers within 5 seconds.
func (c *Client) Available() bool {
	probe := &http.Client{Timeout: 5 * time.Second}
	resp, err := probe.Get(c.baseURL + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt (with optional leading context) to Ollama
// and returns the model's reply. A timed-out request is retried once.
func (c *Client) Generate(prompt, context string) (string, error) {
	fullPrompt := fmt.Sprintf("%s\n\nUser: %s\nAssistant:", context, prompt)

	body, err := json.Marshal(generateRequest{
		Model:  c.modelName,
		Prompt: fullPrompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	// Local models can be slow to answer; allow one retry on timeout.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		client := &http.Client{Timeout: 120 * time.Second}
		resp, err := client.Post(c.baseURL+"/api/generate", "application/json", bytes.NewReader(body))
		if err != nil {
			if isTimeout(err) {
				lastErr = err
				continue
			}
			return "", fmt.Errorf("failed to contact ollama: %w", err)
		}

		var result generateResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return "", fmt.Errorf("failed to decode ollama response: %w", decodeErr)
		}

		if result.Response == "" {
			return "No response generated", nil
		}
		return result.Response, nil
	}

	return "", fmt.Errorf("ollama request timed out: %w", lastErr)
}

// AnswerObjectQuestion answers a question using recent detection facts
// as grounding context.
func (c *Client) AnswerObjectQuestion(question string, facts []models.DetectionFact) (string, error) {
	context := systemPrompt + buildContext(facts)
	return c.Generate(question, context)
}

// SearchSuggestions returns up to five object names matching the
// partial input (case-insensitive substring).
func (c *Client) SearchSuggestions(partial string, available []string) []string {
	if partial == "" {
		if len(available) > 5 {
			return available[:5]
		}
		return available
	}

	partialLower := strings.ToLower(partial)
	var suggestions []string
	for _, name := range available {
		if strings.Contains(strings.ToLower(name), partialLower) {
			suggestions = append(suggestions, name)
			if len(suggestions) == 5 {
				break
			}
		}
	}
	return suggestions
}

// buildContext groups facts per object and summarizes the most recent
// sighting of each, the shape the model answers best from.
func buildContext(facts []models.DetectionFact) string {
	if len(facts) == 0 {
		return "No recent object detections available."
	}

	groups := make(map[string][]models.DetectionFact)
	var order []string
	for _, fact := range facts {
		if _, seen := groups[fact.ObjectName]; !seen {
			order = append(order, fact.ObjectName)
		}
		groups[fact.ObjectName] = append(groups[fact.ObjectName], fact)
	}

	var parts []string
	for _, name := range order {
		objectFacts := groups[name]
		latest := objectFacts[0] // facts arrive most recent first

		location := latest.LocationDescription
		if location == "" {
			location = "Unknown location"
		}

		parts = append(parts, fmt.Sprintf(
			"Object: %s\nLast seen: %s\nLocation: %s\nConfidence: %.2f\nTotal detections: %d\n",
			name, latest.Timestamp, location, latest.Confidence, len(objectFacts)))
	}

	return strings.Join(parts, "\n")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
