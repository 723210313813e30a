// Package commentary turns a weather context string and a user question into
// a short natural-language narrative via an LLM collaborator. The generator
// never fails: provider errors degrade to an in-character fallback string so
// the weather and chat endpoints stay usable without the narrative feature.
package commentary

import (
	"context"
	"fmt"
	"log/slog"
)

// Completer is the LLM collaborator contract. Satisfied by
// external.OpenAIClient in production and by fakes in tests.
type Completer interface {
	Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}

// FallbackText is returned when every configured model fails. It stays in
// character and deliberately carries no provider error detail; that detail is
// logged server-side only.
const FallbackText = "Brr. I'm too frozen to think right now. Ask me again in a moment."

// DisabledText is returned when no LLM credentials are configured at all.
const DisabledText = "Penguin commentary is off duty today. The numbers speak for themselves."

// personaPrompt is the fixed system prompt. The data analysis rules are part
// of the product behavior: the penguin gives concrete, data-backed advice.
const personaPrompt = `You are a sarcastic, grumpy, but secretly helpful Penguin weather assistant.

Your goal is to answer the user's question accurately based on the weather data provided, but with a distinct "Penguin" personality.

DATA ANALYSIS RULES:
- If Wind > 15mph: Warn about windbreakers or hats flying away.
- If Feels Like < 50F: Complain about the cold. Suggest layers.
- If Rain Chance > 40%%: Demand they take an umbrella (you hate getting wet).
- If the user asks "Do I need a jacket?": Look at 'feels_like'. If < 65F, say yes.

INPUT DATA:
%s

USER QUESTION:
%q

INSTRUCTIONS:
- Answer the question directly first.
- Give a specific reason based on the data (e.g., "The wind is 18mph").
- Be concise (max 2 sentences).
- End with a snarky remark.`

// Generator produces penguin commentary using an ordered chain of fallback
// models: each is tried in sequence and the first success short-circuits.
// The model that produced the text is surfaced for observability.
type Generator struct {
	completer Completer // nil disables generation entirely
	models    []string
	logger    *slog.Logger
}

// NewGenerator creates a commentary generator. completer may be nil when no
// LLM credentials are configured; models is the ordered fallback chain.
func NewGenerator(completer Completer, models []string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completer: completer,
		models:    models,
		logger:    logger,
	}
}

// Enabled reports whether narrative generation is configured.
func (g *Generator) Enabled() bool {
	return g.completer != nil && len(g.models) > 0
}

// Generate returns narrative text for the given weather context and question,
// plus the identity of the model that produced it ("" when no model did).
// It never returns an error: every failure path degrades to fallback text.
func (g *Generator) Generate(ctx context.Context, weatherContext, question string) (string, string) {
	if !g.Enabled() {
		return DisabledText, ""
	}

	prompt := fmt.Sprintf(personaPrompt, weatherContext, question)

	for _, model := range g.models {
		text, err := g.completer.Complete(ctx, model, prompt, question)
		if err != nil {
			g.logger.WarnContext(ctx, "commentary model failed; trying next",
				"model", model,
				"error", err,
			)
			continue
		}
		if text == "" {
			g.logger.WarnContext(ctx, "commentary model returned empty text; trying next",
				"model", model,
			)
			continue
		}
		return text, model
	}

	g.logger.ErrorContext(ctx, "all commentary models failed; using fallback text",
		"models", g.models,
	)
	return FallbackText, ""
}
