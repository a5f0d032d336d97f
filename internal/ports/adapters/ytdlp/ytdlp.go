package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Adapter downloads media with yt-dlp.
type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

func (a *Adapter) Name() string { return "yt-dlp" }

func (a *Adapter) Check(ctx context.Context) error {
	if err := a.lookPath(); err != nil {
		return err
	}
	_, err := run(ctx, a.bin, "--version")
	return err
}

// Download fetches the best available video+audio for url as a single mp4 in outDir.
// Playlists are never expanded.
func (a *Adapter) Download(ctx context.Context, url, outDir string) (string, error) {
	if err := a.lookPath(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	stdout, err := run(ctx, a.bin, downloadArgs(url, outDir)...)
	if err != nil {
		return "", err
	}

	path := lastNonEmptyLine(stdout)
	if path == "" {
		return "", errors.New("yt-dlp did not report an output file")
	}
	for _, p := range []string{path, strings.TrimSuffix(path, filepath.Ext(path)) + ".mp4"} {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() && fi.Size() > 0 {
			return p, nil
		}
	}
	return "", fmt.Errorf("video download did not produce a media file (expected %s)", path)
}

func (a *Adapter) lookPath() error {
	if _, err := exec.LookPath(a.bin); err != nil {
		return fmt.Errorf("yt-dlp is required to download videos; install it and ensure it is on your PATH: %w", err)
	}
	return nil
}

func downloadArgs(url, outDir string) []string {
	return []string{
		"--format", "bv*+ba/best",
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--no-progress",
		"--output", filepath.Join(outDir, "%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		"--no-simulate",
		url,
	}
}

func run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return "", fmt.Errorf("%s failed: %w\nstderr: %s", filepath.Base(bin), err, s)
		}
		return "", fmt.Errorf("%s failed: %w", filepath.Base(bin), err)
	}
	return stdout.String(), nil
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
