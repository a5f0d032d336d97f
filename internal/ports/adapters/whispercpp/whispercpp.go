package whispercpp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// Adapter transcribes downloaded media locally with whisper.cpp. It is the fallback
// transcript source for videos without captions.
type Adapter struct {
	bin   string
	model string
	audio ports.AudioExtractor
}

func New(binPath, modelPath string, audio ports.AudioExtractor) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, audio: audio}
}

func (a *Adapter) Name() string { return "whisper.cpp" }

func (a *Adapter) Check(_ context.Context) error {
	if _, err := exec.LookPath(a.bin); err != nil {
		return fmt.Errorf("whisper.cpp binary %q not found: %w", a.bin, err)
	}
	if _, err := os.Stat(a.model); err != nil {
		return fmt.Errorf("whisper model: %w", err)
	}
	return nil
}

func (a *Adapter) Fetch(ctx context.Context, req types.TranscriptRequest) ([]types.TranscriptSegment, error) {
	if req.MediaPath == "" {
		return nil, errors.New("whisper.cpp needs a downloaded media file")
	}
	dir := filepath.Join(req.WorkDir, "whisper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	wav := filepath.Join(dir, "audio.wav")
	if err := a.audio.ExtractAudioMono16k(ctx, req.MediaPath, wav); err != nil {
		return nil, err
	}

	outPrefix := filepath.Join(dir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wav,
		"-oj",
		"-of", outPrefix,
	}
	if lang := whisperLanguage(req.Languages); lang != "" {
		args = append(args, "-l", lang)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, err
	}
	return decode(jb)
}

type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// decode converts whisper.cpp JSON (millisecond offsets) into transcript segments,
// dropping blank and zero-length entries.
func decode(b []byte) ([]types.TranscriptSegment, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode whisper.cpp output: %w", err)
	}
	segs := make([]types.TranscriptSegment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		text := strings.TrimSpace(t.Text)
		if text == "" || t.Offsets.To <= t.Offsets.From {
			continue
		}
		segs = append(segs, types.TranscriptSegment{
			Start:    float64(t.Offsets.From) / 1000,
			Duration: float64(t.Offsets.To-t.Offsets.From) / 1000,
			Text:     text,
		})
	}
	return segs, nil
}

// whisperLanguage maps the first preferred language tag ("pt-BR") to whisper's code ("pt").
func whisperLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	l := strings.ToLower(strings.TrimSpace(langs[0]))
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	return l
}
