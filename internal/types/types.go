package types

import "time"

type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

func (s TranscriptSegment) End() float64 { return s.Start + s.Duration }

// Window is a half-open interval [Start, End) on the source timeline, in seconds.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Overlaps reports whether w and o share any instant. Touching windows do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

type ClipCandidate struct {
	Start float64
	End   float64
	Text  string
	Score float64
}

func (c ClipCandidate) Window() Window { return Window{Start: c.Start, End: c.End} }

type ClipCopy struct {
	Title   string   `json:"title"`
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
}

type ClipFile struct {
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Score      float64   `json:"score"`
	Transcript string    `json:"transcript"`
	Path       string    `json:"file_path"`
	Copy       *ClipCopy `json:"copy,omitempty"`
}

type PipelineResult struct {
	RunID           string     `json:"run_id"`
	Input           string     `json:"input"`
	ContentID       string     `json:"content_id"`
	SourceMediaPath string     `json:"source_media_path"`
	OutputDirectory string     `json:"output_directory"`
	Clips           []ClipFile `json:"clips"`
	CreatedAt       time.Time  `json:"created_at"`
}

type TranscriptRequest struct {
	ContentID string
	URL       string
	MediaPath string
	Languages []string
	WorkDir   string
}
