// Package itemauthoring generates and canonicalizes draft ζ-parameter
// stimuli for human calibration review. It produces ordinary
// multicat.Stimulus values — it never calls into internal/cat or
// internal/multicat directly.
package itemauthoring

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/adaptivecat/engine/internal/caterr"
	"github.com/adaptivecat/engine/internal/irt"
)

// quantity names one of the four IRT parameters at the symbolic/
// semantic spelling boundary.
type quantity struct {
	symbolic   string
	semantic   string
	canonical  string
	defaultVal float64
}

var quantities = []quantity{
	{"a", "discrimination", "a", 1},
	{"b", "difficulty", "b", 0},
	{"c", "guessing", "c", 0},
	{"d", "slipping", "d", 1},
}

// CanonicalizeParams turns a raw item-parameter record — which may use
// either the symbolic (a,b,c,d) or semantic (discrimination,difficulty,
// guessing,slipping) spelling for each quantity, but never both — into
// irt.Params. In strict mode, a quantity absent under both spellings
// is a MissingKeys error instead of silently defaulting.
func CanonicalizeParams(raw map[string]any, strict bool) (irt.Params, error) {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return irt.Params{}, fmt.Errorf("marshal raw params: %w", err)
	}

	canonical := []byte("{}")
	for _, q := range quantities {
		sVal := gjson.GetBytes(rawJSON, q.symbolic)
		mVal := gjson.GetBytes(rawJSON, q.semantic)

		switch {
		case sVal.Exists() && mVal.Exists():
			return irt.Params{}, caterr.New(caterr.RedundantKeys,
				"item carries both %q and %q for the same quantity", q.symbolic, q.semantic)
		case sVal.Exists():
			canonical, err = sjson.SetBytes(canonical, q.canonical, sVal.Float())
		case mVal.Exists():
			canonical, err = sjson.SetBytes(canonical, q.canonical, mVal.Float())
		case strict:
			return irt.Params{}, caterr.New(caterr.MissingKeys,
				"strict mode requires %q (or %q) and neither is present", q.symbolic, q.semantic)
		default:
			canonical, err = sjson.SetBytes(canonical, q.canonical, q.defaultVal)
		}
		if err != nil {
			return irt.Params{}, fmt.Errorf("canonicalize %s: %w", q.canonical, err)
		}
	}

	var out struct {
		A float64 `json:"a"`
		B float64 `json:"b"`
		C float64 `json:"c"`
		D float64 `json:"d"`
	}
	if err := json.Unmarshal(canonical, &out); err != nil {
		return irt.Params{}, fmt.Errorf("unmarshal canonical params: %w", err)
	}

	return irt.Params{A: out.A, B: out.B, C: out.C, D: out.D}, nil
}
