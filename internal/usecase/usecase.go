package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/viralcut/internal/domain/highlights"
	"github.com/forPelevin/viralcut/internal/domain/videoid"
	"github.com/forPelevin/viralcut/internal/logger"
	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// State is a step of a pipeline run. Runs only move forward; any failure ends in StateFailed.
type State string

const (
	StateInit                State = "init"
	StateIdentifierExtracted State = "identifier_extracted"
	StateMediaAcquired       State = "media_acquired"
	StateTranscriptFetched   State = "transcript_fetched"
	StateCandidatesBuilt     State = "candidates_built"
	StateClipsSelected       State = "clips_selected"
	StateClipsRendered       State = "clips_rendered"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

var DefaultLanguages = []string{"pt-BR", "pt", "en"}

// copyWorkers bounds concurrent Copywriter calls for one run.
const copyWorkers = 3

type Deps struct {
	Downloader  ports.Downloader
	Transcripts ports.TranscriptSource
	Renderer    ports.Renderer
	// Copywriter is optional; nil leaves clips without copy.
	Copywriter ports.Copywriter
	Log        *logger.Logger
	Now        func() time.Time
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return Usecase{d: d}
}

type Input struct {
	URL        string
	ClipLength float64
	MaxClips   int
	Step       float64
	Languages  []string
	// OutRoot is the output root; the run writes under OutRoot/<content id>/<RunID>.
	OutRoot  string
	RunID    string
	Progress func(State)
}

func (in Input) validate() error {
	switch {
	case !positiveFinite(in.ClipLength):
		return pipeerr.Newf(pipeerr.InvalidConfiguration, "clip length must be a positive finite number of seconds")
	case in.MaxClips <= 0:
		return pipeerr.Newf(pipeerr.InvalidConfiguration, "max clips must be greater than zero")
	case !positiveFinite(in.Step):
		return pipeerr.Newf(pipeerr.InvalidConfiguration, "step must be a positive finite number of seconds")
	case strings.TrimSpace(in.RunID) == "":
		return pipeerr.Newf(pipeerr.InvalidConfiguration, "run id is required")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Run takes one URL through identifier extraction, download, transcript, candidate
// scoring, selection and rendering. Every returned error is a *pipeerr.Error except
// local filesystem failures.
func (u Usecase) Run(ctx context.Context, in Input) (res types.PipelineResult, err error) {
	log := u.d.Log.With("run_id", in.RunID)
	state := StateInit
	advance := func(s State) {
		state = s
		log.Info("pipeline state", "state", s)
		if in.Progress != nil {
			in.Progress(s)
		}
	}
	defer func() {
		if err != nil {
			log.Warn("pipeline failed", "state", state, "error", err)
			if in.Progress != nil {
				in.Progress(StateFailed)
			}
		}
	}()

	if err := in.validate(); err != nil {
		return types.PipelineResult{}, err
	}

	contentID, err := videoid.Extract(in.URL)
	if err != nil {
		return types.PipelineResult{}, err
	}
	log = log.With("content_id", contentID)
	advance(StateIdentifierExtracted)

	runDir := filepath.Join(in.OutRoot, safeSegment(contentID), safeSegment(in.RunID))
	downloadsDir := filepath.Join(runDir, "downloads")
	clipsDir := filepath.Join(runDir, "clips")
	for _, d := range []string{downloadsDir, clipsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return types.PipelineResult{}, fmt.Errorf("prepare run dir: %w", err)
		}
	}

	media, err := u.d.Downloader.Download(ctx, in.URL, downloadsDir)
	if err != nil {
		return types.PipelineResult{}, pipeerr.Wrap(pipeerr.AcquisitionFailed, err)
	}
	advance(StateMediaAcquired)

	langs := in.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	segs, err := u.d.Transcripts.Fetch(ctx, types.TranscriptRequest{
		ContentID: contentID,
		URL:       in.URL,
		MediaPath: media,
		Languages: langs,
		WorkDir:   runDir,
	})
	if err != nil {
		return types.PipelineResult{}, pipeerr.Wrap(pipeerr.TranscriptUnavailable, err)
	}
	log.Debug("transcript fetched", "segments", len(segs))
	advance(StateTranscriptFetched)

	cands, err := highlights.BuildCandidates(segs, highlights.WindowConfig{Length: in.ClipLength, Step: in.Step})
	if err != nil {
		return types.PipelineResult{}, err
	}
	if len(cands) == 0 {
		return types.PipelineResult{}, pipeerr.Newf(pipeerr.NoCandidates, "no candidate windows found in transcript")
	}
	log.Debug("candidates built", "count", len(cands))
	advance(StateCandidatesBuilt)

	selected, err := highlights.SelectTop(cands, in.MaxClips)
	if err != nil {
		return types.PipelineResult{}, err
	}
	advance(StateClipsSelected)

	windows := make([]types.Window, len(selected))
	for i, c := range selected {
		windows[i] = c.Window()
	}
	paths, err := u.d.Renderer.Render(ctx, media, windows, clipsDir)
	if err != nil {
		return types.PipelineResult{}, pipeerr.Wrap(pipeerr.RenderFailed, err)
	}
	if len(paths) != len(windows) {
		return types.PipelineResult{}, pipeerr.Newf(pipeerr.RenderFailed,
			"renderer produced %d files for %d clips", len(paths), len(windows))
	}
	advance(StateClipsRendered)

	clips := make([]types.ClipFile, len(selected))
	for i, c := range selected {
		clips[i] = types.ClipFile{
			Start:      c.Start,
			End:        c.End,
			Score:      c.Score,
			Transcript: c.Text,
			Path:       paths[i],
		}
	}
	u.describe(ctx, log, clips)

	res = types.PipelineResult{
		RunID:           in.RunID,
		Input:           in.URL,
		ContentID:       contentID,
		SourceMediaPath: media,
		OutputDirectory: runDir,
		Clips:           clips,
		CreatedAt:       u.d.Now().UTC(),
	}
	advance(StateDone)
	return res, nil
}

// describe attaches copy to each clip. Failures only drop the copy of that clip.
func (u Usecase) describe(ctx context.Context, log *logger.Logger, clips []types.ClipFile) {
	if u.d.Copywriter == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(copyWorkers)
	for i := range clips {
		g.Go(func() error {
			cp, err := u.d.Copywriter.Describe(ctx, clips[i].Transcript)
			if err != nil {
				log.Warn("clip copy failed", "clip", i+1, "error", err)
				return nil
			}
			clips[i].Copy = &cp
			return nil
		})
	}
	_ = g.Wait()
}

// safeSegment keeps identifiers readable on disk while refusing separators and dot-only names.
func safeSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			prevDash = false
		case r == '-':
			b.WriteRune(r)
			prevDash = true
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "unknown"
	}
	return out
}
