package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nadzzz/maestro/internal/interpreter"
)

// keyword rules are checked in order against the lower-cased utterance.
var keywordRules = []struct {
	words  []string
	action Action
}{
	{words: []string{"następny", "następna", "next", "skip", "pomiń", "dalej", "another", "kolejna", "kolejny"}, action: NextSong{}},
	{words: []string{"stop", "pause", "zatrzymaj", "pauza", "wstrzymaj", "przestań"}, action: PausePlayback{}},
	{words: []string{"resume", "play", "wznów", "kontynuuj", "graj", "start", "continue"}, action: ResumePlayback{}},
	{words: []string{"podoba mi się", "like", "lubię to", "fajna piosenka", "dodaj do ulubionych", "polub"}, action: Like{}},
}

// Parser maps utterances to Actions.
type Parser struct {
	model interpreter.Completer // nil disables the model path
}

// NewParser creates a Parser backed by model.
func NewParser(model interpreter.Completer) *Parser {
	return &Parser{model: model}
}

// Parse never fails: model errors and malformed or invalid responses fall
// back to keyword matching and finally to a plain song search.
func (p *Parser) Parse(ctx context.Context, utterance string) Action {
	if p.model == nil {
		return Fallback(utterance)
	}

	content, err := p.model.Complete(ctx, SystemPrompt, utterance)
	if err != nil {
		slog.Warn("intent model unavailable, using keyword fallback", "error", err)
		return Fallback(utterance)
	}

	action, err := Decode([]byte(strings.TrimSpace(content)), utterance)
	if err == nil {
		slog.Debug("intent parsed", "action", action.Kind())
		return action
	}
	slog.Debug("model response rejected", "error", err, "content", truncate(content, 200))

	if sliced, ok := sliceObject(content); ok {
		if action, err := Decode([]byte(sliced), utterance); err == nil {
			slog.Debug("intent parsed from embedded object", "action", action.Kind())
			return action
		}
	}

	action = Fallback(utterance)
	slog.Info("intent resolved by fallback", "action", action.Kind())
	return action
}

// Fallback classifies utterance by keywords only. Utterances that match no
// keyword become a song search for the whole text.
func Fallback(utterance string) Action {
	lower := strings.ToLower(utterance)
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return rule.action
			}
		}
	}
	return PlaySong{Song: strings.TrimSpace(utterance)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
