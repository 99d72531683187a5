package itemauthoring

import "fmt"

// SystemPrompt describes the drafting task to the model: propose
// candidate ζ parameters alongside a question stem, for a human
// calibrator to review and accept or revise — never to administer
// as-is.
func SystemPrompt() string {
	return `You are drafting candidate items for a computerized adaptive test.
For each item, propose a short question stem and a plausible set of
4-parameter logistic IRT parameters (discrimination, difficulty,
guessing, slipping — or their symbolic a/b/c/d spellings). These are
calibration proposals for human review, not finished, validated items.
Respond with JSON: {"items": [{"stem": "...", "a": ..., "b": ..., "c": ..., "d": ...}]}.`
}

// UserPrompt requests count draft items for the named construct at an
// approximate target difficulty.
func UserPrompt(construct string, targetDifficulty float64, count int) string {
	return fmt.Sprintf(
		"Draft %d candidate items for the construct %q, targeting a difficulty near b=%.2f on the logistic scale.",
		count, construct, targetDifficulty,
	)
}
