package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/types"
)

// Subtitles fetches uploaded or auto-generated captions through yt-dlp and parses them.
type Subtitles struct {
	*Adapter
}

func NewSubtitles(binPath string) *Subtitles {
	return &Subtitles{Adapter: New(binPath)}
}

// origSuffix marks the auto-generated track in the video's own spoken language. Other
// auto tracks are machine translations of it.
const origSuffix = "-orig"

// Fetch returns the transcript for the first requested language, in preference order,
// that has an uploaded caption track or an auto-generated track in the video's own
// language. Machine-translated tracks are never used.
//
// Uploaded captions are fetched first; the auto-generated pass runs only when the most
// preferred language has no uploaded track.
func (s *Subtitles) Fetch(ctx context.Context, req types.TranscriptRequest) ([]types.TranscriptSegment, error) {
	if len(req.Languages) == 0 {
		return nil, pipeerr.Newf(pipeerr.TranscriptUnavailable, "no transcript languages requested")
	}
	if err := s.lookPath(); err != nil {
		return nil, err
	}
	manualDir := filepath.Join(req.WorkDir, "subtitles", "manual")
	autoDir := filepath.Join(req.WorkDir, "subtitles", "auto")
	for _, d := range []string{manualDir, autoDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}

	target := req.URL
	if target == "" {
		target = req.ContentID
	}
	if _, err := run(ctx, s.bin, manualSubtitleArgs(target, manualDir, req.Languages)...); err != nil {
		return nil, err
	}
	if segs, err := pickTrack(manualDir, autoDir, req.Languages[:1]); err != nil || len(segs) > 0 {
		return segs, err
	}

	if _, err := run(ctx, s.bin, autoSubtitleArgs(target, autoDir, req.Languages)...); err != nil {
		return nil, err
	}
	segs, err := pickTrack(manualDir, autoDir, req.Languages)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, pipeerr.Newf(pipeerr.TranscriptUnavailable,
			"transcript not available for this video (languages: %s)", strings.Join(req.Languages, ", "))
	}
	return segs, nil
}

// pickTrack walks langs in order and, per language, prefers the uploaded track over the
// original auto-generated one. Tracks that parse to nothing are skipped.
func pickTrack(manualDir, autoDir string, langs []string) ([]types.TranscriptSegment, error) {
	for _, lang := range langs {
		for _, c := range []struct{ dir, lang string }{
			{manualDir, lang},
			{autoDir, lang + origSuffix},
		} {
			path, ok := findSubtitle(c.dir, c.lang)
			if !ok {
				continue
			}
			segs, err := parseFile(path)
			if err != nil {
				return nil, err
			}
			if len(segs) > 0 {
				return segs, nil
			}
		}
	}
	return nil, nil
}

func manualSubtitleArgs(target, dir string, langs []string) []string {
	return subtitleArgs("--write-subs", target, dir, langs)
}

// autoSubtitleArgs requests only "<lang>-orig" tracks, the untranslated speech recognition.
func autoSubtitleArgs(target, dir string, langs []string) []string {
	orig := make([]string, len(langs))
	for i, l := range langs {
		orig[i] = l + origSuffix
	}
	return subtitleArgs("--write-auto-subs", target, dir, orig)
}

func subtitleArgs(kind, target, dir string, langs []string) []string {
	return []string{
		"--skip-download",
		kind,
		"--sub-langs", strings.Join(langs, ","),
		"--sub-format", "vtt",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		target,
	}
}

func findSubtitle(dir, lang string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, "*."+lang+".vtt"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

func parseFile(path string) ([]types.TranscriptSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	segs, err := subtitles.ParseVTT(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return segs, nil
}
