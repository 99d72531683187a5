package itemauthoring

import (
	"context"
	"fmt"

	"github.com/adaptivecat/engine/internal/multicat"
)

// Pipeline wraps an LLMClient and produces draft stimuli ready for
// human calibration review, tagged "unvalidated" by carrying no cat
// names until a reviewer assigns them.
type Pipeline struct {
	llm LLMClient
}

func NewPipeline(llm LLMClient) *Pipeline {
	return &Pipeline{llm: llm}
}

// DraftBatch requests count candidate items for construct at
// approximately the given target difficulty, canonicalizes each
// item's proposed ζ, and returns them as uncalibrated Stimulus
// values — every Zeta tuple carries an empty Cats list until a human
// reviewer accepts the draft and assigns it to a construct.
func (p *Pipeline) DraftBatch(ctx context.Context, construct string, targetDifficulty float64, count int) ([]multicat.Stimulus, error) {
	resp, err := p.llm.Generate(ctx, SystemPrompt(), UserPrompt(construct, targetDifficulty, count))
	if err != nil {
		return nil, fmt.Errorf("draft batch: %w", err)
	}

	drafts, err := ParseDraftResponse(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("draft batch: %w", err)
	}

	stimuli := make([]multicat.Stimulus, 0, len(drafts))
	for i, d := range drafts {
		params, err := CanonicalizeParams(d.Raw, false)
		if err != nil {
			return nil, fmt.Errorf("draft item %d: %w", i, err)
		}

		stimuli = append(stimuli, multicat.Stimulus{
			ID: fmt.Sprintf("draft-%s-%d", construct, i),
			Zetas: []multicat.ZetaTuple{
				{Params: params, Cats: nil},
			},
			Metadata: map[string]any{"stem": d.Stem, "draft_for": construct},
		})
	}
	return stimuli, nil
}
