package commentary

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeCompleter scripts per-model responses and records call order plus the
// last system prompt received.
type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
	prompt    string
}

func (f *fakeCompleter) Complete(_ context.Context, model, systemPrompt, _ string) (string, error) {
	f.calls = append(f.calls, model)
	f.prompt = systemPrompt
	if !strings.Contains(systemPrompt, "Penguin") {
		return "", errors.New("missing persona in prompt")
	}
	if err := f.errs[model]; err != nil {
		return "", err
	}
	return f.responses[model], nil
}

func TestGenerator_FirstModelWins(t *testing.T) {
	completer := &fakeCompleter{
		responses: map[string]string{
			"model-a": "Take an umbrella. Obviously.",
			"model-b": "should not be reached",
		},
	}
	gen := NewGenerator(completer, []string{"model-a", "model-b"}, nil)

	text, model := gen.Generate(context.Background(), "Rain Chance: 80%", "Do I need an umbrella?")
	if text != "Take an umbrella. Obviously." {
		t.Errorf("unexpected text: %q", text)
	}
	if model != "model-a" {
		t.Errorf("expected model-a, got %q", model)
	}
	if len(completer.calls) != 1 {
		t.Errorf("expected 1 call, got %d", len(completer.calls))
	}
}

func TestGenerator_PromptPlacesContextAndQuestion(t *testing.T) {
	completer := &fakeCompleter{
		responses: map[string]string{"model-a": "Wear a coat."},
	}
	gen := NewGenerator(completer, []string{"model-a"}, nil)

	weatherContext := "Current Weather in Paris: Temp 18C, Rain Chance 80%"
	question := "Do I need a jacket?"
	gen.Generate(context.Background(), weatherContext, question)

	prompt := completer.prompt
	dataIdx := strings.Index(prompt, "INPUT DATA:")
	questionIdx := strings.Index(prompt, "USER QUESTION:")
	if dataIdx < 0 || questionIdx < 0 || questionIdx < dataIdx {
		t.Fatalf("prompt missing or misordered sections:\n%s", prompt)
	}
	dataSection := prompt[dataIdx:questionIdx]
	if !strings.Contains(dataSection, weatherContext) {
		t.Errorf("weather context not under INPUT DATA:\n%s", dataSection)
	}
	if !strings.Contains(prompt[questionIdx:], `"Do I need a jacket?"`) {
		t.Errorf("question not under USER QUESTION:\n%s", prompt[questionIdx:])
	}
	// A bad format verb would leave %! markers in the rendered prompt.
	if strings.Contains(prompt, "%!") {
		t.Errorf("prompt contains format error markers:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Rain Chance > 40%:") {
		t.Errorf("rain rule did not render with a literal percent:\n%s", prompt)
	}
}

func TestGenerator_FallsThroughChainOnError(t *testing.T) {
	completer := &fakeCompleter{
		responses: map[string]string{"model-b": "Layers. Always layers."},
		errs:      map[string]error{"model-a": errors.New("rate limited")},
	}
	gen := NewGenerator(completer, []string{"model-a", "model-b"}, nil)

	text, model := gen.Generate(context.Background(), "Feels Like: 40F", "What should I wear?")
	if text != "Layers. Always layers." {
		t.Errorf("unexpected text: %q", text)
	}
	if model != "model-b" {
		t.Errorf("expected model-b, got %q", model)
	}
	if got := strings.Join(completer.calls, ","); got != "model-a,model-b" {
		t.Errorf("unexpected call order: %s", got)
	}
}

func TestGenerator_EmptyTextTriggersFallthrough(t *testing.T) {
	completer := &fakeCompleter{
		responses: map[string]string{"model-a": "", "model-b": "Fine, it's cold."},
	}
	gen := NewGenerator(completer, []string{"model-a", "model-b"}, nil)

	text, model := gen.Generate(context.Background(), "Temp: 2C", "Is it cold?")
	if text != "Fine, it's cold." || model != "model-b" {
		t.Errorf("got (%q, %q)", text, model)
	}
}

func TestGenerator_AllModelsFail(t *testing.T) {
	completer := &fakeCompleter{
		errs: map[string]error{
			"model-a": errors.New("timeout"),
			"model-b": errors.New("timeout"),
		},
	}
	gen := NewGenerator(completer, []string{"model-a", "model-b"}, nil)

	text, model := gen.Generate(context.Background(), "ctx", "question")
	if text != FallbackText {
		t.Errorf("expected fallback text, got %q", text)
	}
	if model != "" {
		t.Errorf("expected empty model, got %q", model)
	}
	// Provider error detail never leaks into the user-facing text.
	if strings.Contains(text, "timeout") {
		t.Errorf("fallback text leaks provider error: %q", text)
	}
}

func TestGenerator_Disabled(t *testing.T) {
	gen := NewGenerator(nil, nil, nil)

	if gen.Enabled() {
		t.Error("generator with nil completer must report disabled")
	}
	text, model := gen.Generate(context.Background(), "ctx", "question")
	if text != DisabledText || model != "" {
		t.Errorf("got (%q, %q)", text, model)
	}
}
