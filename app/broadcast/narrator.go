package broadcast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lysyi3m/rss-digest/app/nlp"
)

var ErrNothingToBroadcast = errors.New("nothing to broadcast")

const editorPrompt = `You are an experienced news editor responsible for drafting a professional and objective news broadcast. Given a series of news story summaries, analyze them for key facts, themes and relevance, then synthesize them into a single coherent news script.

Maintain a formal journalistic tone. Avoid bias, speculation and editorializing; stick to the information given and neutral language.

Output only the text of the news broadcast with no symbols or text introducing or concluding the output.`

// Narrator turns a block of summaries into a broadcast script.
type Narrator struct {
	client nlp.ChatCompleter
	model  string
}

func NewNarrator(client nlp.ChatCompleter, model string) *Narrator {
	return &Narrator{
		client: client,
		model:  model,
	}
}

func (n *Narrator) Compose(ctx context.Context, summaries string) (string, error) {
	if strings.TrimSpace(summaries) == "" {
		return "", ErrNothingToBroadcast
	}

	script, err := nlp.Complete(ctx, n.client, n.model, editorPrompt,
		"Here are the summaries to work with:\n\n"+summaries, 0)
	if err != nil {
		return "", fmt.Errorf("failed to compose broadcast: %w", err)
	}

	return script, nil
}
