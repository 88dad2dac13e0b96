package agent

import (
	"context"
	"encoding/json"

	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/pkg/llm"
)

// ReplyCache lets the agent skip the model round-trip for prompts it has
// answered recently. A nil cache disables the optimization.
type ReplyCache interface {
	Get(prompt string) (string, bool)
	Set(prompt, reply string)
}

// Agent runs the three-stage preference pipeline: normalize the emotional
// input, ask the model for categories, then attach a deterministic
// confidence score. Predict and Stream never fail; every backend problem
// degrades to the deterministic fallback instead.
type Agent struct {
	provider llm.Provider
	cache    ReplyCache
	log      logger.ILogger
}

func NewAgent(provider llm.Provider, cache ReplyCache, log logger.ILogger) *Agent {
	return &Agent{provider: provider, cache: cache, log: log}
}

// Predict runs the full pipeline for one user and always returns a usable
// result.
func (a *Agent) Predict(ctx context.Context, userID string, emotions map[string]float64, interactions []map[string]interface{}, sessionContext map[string]interface{}) *Result {
	state := &State{
		UserID:               userID,
		Emotions:             emotions,
		PreviousInteractions: interactions,
		SessionContext:       sessionContext,
	}

	a.analyzeEmotions(state)
	a.generateRecommendations(ctx, state)
	a.calculateConfidence(state)

	return &Result{
		UserID:                state.UserID,
		RecommendedCategories: state.RecommendedCategories,
		Reasoning:             state.Reasoning,
		ConfidenceScore:       state.ConfidenceScore,
	}
}

// analyzeEmotions substitutes a neutral placeholder when the caller supplied
// no distribution, so the prompt always describes some emotional state. The
// input map is copied, never mutated.
func (a *Agent) analyzeEmotions(state *State) {
	if len(state.Emotions) == 0 {
		state.Emotions = map[string]float64{"neutral": 1.0}
		state.EmotionsDefaulted = true
		return
	}
	copied := make(map[string]float64, len(state.Emotions))
	for k, v := range state.Emotions {
		copied[k] = v
	}
	state.Emotions = copied
}

func (a *Agent) generateRecommendations(ctx context.Context, state *State) {
	prompt := a.buildPrompt(state)

	raw, cached := a.cachedReply(prompt)
	if !cached {
		var err error
		raw, err = a.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
		if err != nil {
			a.log.Warn("agent", "recommendation backend failed, using fallback", map[string]interface{}{
				"user_id": state.UserID,
				"error":   err.Error(),
			})
			state.RecommendedCategories = fallbackCategories
			state.Reasoning = fallbackReasoningError
			return
		}
		if a.cache != nil {
			a.cache.Set(prompt, raw)
		}
	}

	reply, ok := parseReply(raw)
	if !ok {
		a.log.Warn("agent", "unparseable recommendation reply, using fallback", map[string]interface{}{
			"user_id": state.UserID,
		})
		state.RecommendedCategories = fallbackCategories
		state.Reasoning = fallbackReasoningParse
		return
	}

	state.RecommendedCategories = reply.RecommendedCategories
	state.Reasoning = reply.Reasoning
}

func (a *Agent) cachedReply(prompt string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	return a.cache.Get(prompt)
}

// calculateConfidence scores the prediction from the supplied distribution.
// The neutral placeholder injected for prompting does not count as supplied
// input, so an empty request scores the flat default.
func (a *Agent) calculateConfidence(state *State) {
	if state.EmotionsDefaulted || len(state.Emotions) == 0 {
		state.ConfidenceScore = defaultConfidence
		return
	}

	label, weight := dominantEmotion(state.Emotions)

	var factor float64
	switch label {
	case "neutral":
		factor = 0.7
	case "happy", "surprise":
		factor = 0.9
	default:
		factor = 0.8
	}

	state.ConfidenceScore = factor * weight
}

// dominantEmotion returns the heaviest label; ties break toward the
// lexicographically smaller label so the score is deterministic.
func dominantEmotion(emotions map[string]float64) (string, float64) {
	var (
		bestLabel  string
		bestWeight float64
		first      = true
	)
	for label, weight := range emotions {
		if first || weight > bestWeight || (weight == bestWeight && label < bestLabel) {
			bestLabel, bestWeight = label, weight
			first = false
		}
	}
	return bestLabel, bestWeight
}

// Stream runs the streaming variant and forwards model fragments as they
// arrive. Like Predict it never fails: any backend error is delivered as a
// single JSON error fragment before the channel closes.
func (a *Agent) Stream(ctx context.Context, userID string, emotions map[string]float64, interactions []map[string]interface{}, sessionContext map[string]interface{}) <-chan string {
	state := &State{
		UserID:               userID,
		Emotions:             emotions,
		PreviousInteractions: interactions,
		SessionContext:       sessionContext,
	}
	a.analyzeEmotions(state)

	out := make(chan string)

	chunks, err := a.provider.GenerateStream(ctx, a.buildStreamPrompt(state), llm.WithTemperature(0.7))
	if err != nil {
		go func() {
			defer close(out)
			out <- errorFragment("failed to start recommendation stream", err)
		}()
		return out
	}

	go func() {
		defer close(out)
		for chunk := range chunks {
			if chunk.Err != nil {
				select {
				case out <- errorFragment("recommendation stream interrupted", chunk.Err):
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- chunk.Content:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func errorFragment(message string, err error) string {
	payload, _ := json.Marshal(map[string]string{
		"error":   message,
		"details": err.Error(),
	})
	return string(payload)
}
