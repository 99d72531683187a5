package itemauthoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DraftItem is one LLM-proposed item before parameter canonicalization
// and ID assignment.
type DraftItem struct {
	Stem string         `json:"stem"`
	Raw  map[string]any `json:"-"`
}

// draftBatch is the wire shape an LLMResponse's content decodes into.
type draftBatch struct {
	Items []json.RawMessage `json:"items"`
}

// ParseDraftResponse decodes an LLM response into draft items, keeping
// each item's raw parameter fields around for CanonicalizeParams.
func ParseDraftResponse(content string) ([]DraftItem, error) {
	cleaned := stripCodeFences(content)

	var batch draftBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("parse draft response: %w", err)
	}
	if len(batch.Items) == 0 {
		return nil, fmt.Errorf("draft response carries no items")
	}

	items := make([]DraftItem, 0, len(batch.Items))
	for i, raw := range batch.Items {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		stem, _ := fields["stem"].(string)
		if stem == "" {
			return nil, fmt.Errorf("item %d: empty stem", i)
		}
		delete(fields, "stem")

		items = append(items, DraftItem{Stem: stem, Raw: fields})
	}
	return items, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
