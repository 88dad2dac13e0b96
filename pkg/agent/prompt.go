package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

func jsonOrEmpty(v interface{}) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// buildPrompt renders the single-shot recommendation prompt. The model is
// asked for strict JSON so the reply can be parsed by parseReply.
func (a *Agent) buildPrompt(state *State) string {
	var sb strings.Builder
	sb.WriteString("You are a product recommendation engine for an e-commerce platform.\n\n")
	sb.WriteString(fmt.Sprintf("User ID: %s\n", state.UserID))
	sb.WriteString(fmt.Sprintf("Current emotional state (emotion -> weight): %s\n", jsonOrEmpty(state.Emotions)))

	if len(state.PreviousInteractions) > 0 {
		sb.WriteString(fmt.Sprintf("Previous interactions: %s\n", jsonOrEmpty(state.PreviousInteractions)))
	}
	if len(state.SessionContext) > 0 {
		sb.WriteString(fmt.Sprintf("Session context: %s\n", jsonOrEmpty(state.SessionContext)))
	}

	sb.WriteString("\nAvailable product categories:\n")
	for _, c := range ProductCategories {
		sb.WriteString("- " + c + "\n")
	}

	sb.WriteString("\nBased on the user's emotional state, recommend 3 to 5 categories from the list above.\n")
	sb.WriteString("Respond with ONLY a JSON object in this exact shape, no extra text:\n")
	sb.WriteString(`{"recommended_categories": ["..."], "reasoning": "..."}`)
	sb.WriteString("\n")
	return sb.String()
}

// buildStreamPrompt renders the free-text prompt used by the streaming
// variant. The reply is forwarded verbatim, so no output format is imposed.
func (a *Agent) buildStreamPrompt(state *State) string {
	var sb strings.Builder
	sb.WriteString("You are a friendly shopping assistant.\n\n")
	sb.WriteString(fmt.Sprintf("The user (id %s) currently feels: %s\n", state.UserID, jsonOrEmpty(state.Emotions)))
	if len(state.PreviousInteractions) > 0 {
		sb.WriteString(fmt.Sprintf("Their recent interactions: %s\n", jsonOrEmpty(state.PreviousInteractions)))
	}
	if len(state.SessionContext) > 0 {
		sb.WriteString(fmt.Sprintf("Session context: %s\n", jsonOrEmpty(state.SessionContext)))
	}
	sb.WriteString("\nAvailable product categories: ")
	sb.WriteString(strings.Join(ProductCategories, ", "))
	sb.WriteString(".\n\nWrite a short, warm product recommendation for them, ")
	sb.WriteString("naming the categories that best match their mood and why.\n")
	return sb.String()
}

type modelReply struct {
	RecommendedCategories []string `json:"recommended_categories"`
	Reasoning             string   `json:"reasoning"`
}

// parseReply extracts the JSON object from a raw model reply, tolerating
// markdown code fences around the payload.
func parseReply(raw string) (*modelReply, bool) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	// Models occasionally wrap the object in prose. Recover the outermost
	// braces before giving up.
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, false
		}
		cleaned = cleaned[start : end+1]
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, false
	}
	if len(reply.RecommendedCategories) == 0 {
		return nil, false
	}
	return &reply, true
}
