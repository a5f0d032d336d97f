package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forPelevin/viralcut/internal/types"
)

// minClipSeconds keeps ffmpeg from receiving a zero -t for degenerate windows.
const minClipSeconds = 0.1

type Adapter struct {
	ffmpeg string
}

func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath}
}

func (a *Adapter) Name() string { return "ffmpeg" }

func (a *Adapter) Check(ctx context.Context) error {
	if _, err := exec.LookPath(a.ffmpeg); err != nil {
		return fmt.Errorf("ffmpeg is required to render clips; install it and ensure it is on your PATH: %w", err)
	}
	b, err := exec.CommandContext(ctx, a.ffmpeg, "-hide_banner", "-version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg -version: %w\n%s", err, string(b))
	}
	return nil
}

// Render stream-copies every window of src into outDir as clip_01.mp4, clip_02.mp4, ...
func (a *Adapter) Render(ctx context.Context, src string, windows []types.Window, outDir string) ([]string, error) {
	if _, err := exec.LookPath(a.ffmpeg); err != nil {
		return nil, fmt.Errorf("ffmpeg is required to render clips; install it and ensure it is on your PATH: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(windows))
	for i, w := range windows {
		dst := filepath.Join(outDir, ClipName(i+1))
		cmd := exec.CommandContext(ctx, a.ffmpeg, cutArgs(src, w, dst)...)
		b, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("ffmpeg render clip %d: %w\n%s", i+1, err, lastLines(string(b), 20))
		}
		out = append(out, dst)
	}
	return out, nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("ffmpeg extract audio: %w", err)
		}
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, lastLines(string(b), 20))
	}
	return nil
}

func ClipName(n int) string {
	return fmt.Sprintf("clip_%02d.mp4", n)
}

func cutArgs(src string, w types.Window, dst string) []string {
	d := math.Max(w.End-w.Start, minClipSeconds)
	return []string{
		"-y",
		"-ss", fmtSeconds(w.Start),
		"-i", src,
		"-t", fmtSeconds(d),
		"-c", "copy",
		dst,
	}
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 2, 64)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
