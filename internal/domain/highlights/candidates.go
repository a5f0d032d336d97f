package highlights

import (
	"math"
	"strings"

	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/types"
)

type WindowConfig struct {
	Length float64
	Step   float64
}

// BuildCandidates slides a Length-second window over the transcript timeline every
// Step seconds and returns one scored candidate per window that has positive score.
// Segments need not be sorted; text is joined in input order.
func BuildCandidates(segs []types.TranscriptSegment, cfg WindowConfig) ([]types.ClipCandidate, error) {
	if cfg.Length <= 0 || math.IsInf(cfg.Length, 0) || math.IsNaN(cfg.Length) {
		return nil, pipeerr.Newf(pipeerr.InvalidConfiguration, "window length must be a positive finite value")
	}
	if cfg.Step <= 0 || math.IsInf(cfg.Step, 0) || math.IsNaN(cfg.Step) {
		return nil, pipeerr.Newf(pipeerr.InvalidConfiguration, "step must be a positive finite value")
	}
	if len(segs) == 0 {
		return nil, pipeerr.Newf(pipeerr.EmptyTranscript, "transcript returned no textual segments")
	}

	total := math.Inf(-1)
	for _, s := range segs {
		total = math.Max(total, s.End())
	}
	if !(total > 0) {
		return nil, pipeerr.Newf(pipeerr.InvalidDuration, "transcript duration is invalid")
	}

	var out []types.ClipCandidate
	parts := make([]string, 0, 16)
	for start := range Offsets(math.Max(total-cfg.Length, 0), cfg.Step) {
		end := math.Min(start+cfg.Length, total)
		if end <= start {
			continue
		}

		parts = parts[:0]
		for _, s := range segs {
			if s.Start < end && s.End() > start {
				parts = append(parts, s.Text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}

		score := Score(text, end-start)
		if score <= 0 {
			continue
		}
		out = append(out, types.ClipCandidate{Start: start, End: end, Text: text, Score: score})
	}
	return out, nil
}
