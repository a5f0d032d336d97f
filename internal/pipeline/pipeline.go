package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/config"
	"github.com/forPelevin/viralcut/internal/logger"
	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/ports/adapters/chain"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/viralcut/internal/ports/adapters/openrouter"
	"github.com/forPelevin/viralcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/viralcut/internal/runs"
	"github.com/forPelevin/viralcut/internal/types"
	"github.com/forPelevin/viralcut/internal/usecase"
)

const ManifestName = "manifest.json"

// Request is one submission. Zero values fall back to the configured clip defaults.
type Request struct {
	RunID      string
	URL        string
	ClipLength float64
	MaxClips   int
	Step       float64
}

type Service struct {
	uc       usecase.Usecase
	store    runs.Store
	log      *logger.Logger
	outRoot  string
	defaults config.ClipsConfig
	langs    []string
	tools    []ports.Tool
	now      func() time.Time
}

// New wires the external tool adapters described by cfg.
func New(cfg *config.Config, store runs.Store, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}

	video := ffmpeg.New(cfg.Tools.FFmpegPath)
	dl := ytdlp.New(cfg.Tools.YtDlpPath)
	sources := []chain.Named{{Name: "captions", Source: ytdlp.NewSubtitles(cfg.Tools.YtDlpPath)}}
	tools := []ports.Tool{dl, video}
	if cfg.WhisperEnabled() {
		asr := whispercpp.New(cfg.Tools.WhisperBin, cfg.Tools.WhisperModel, video)
		sources = append(sources, chain.Named{Name: "whisper", Source: asr})
		tools = append(tools, asr)
	}

	deps := usecase.Deps{
		Downloader:  dl,
		Transcripts: chain.New(sources...),
		Renderer:    video,
		Log:         log,
	}
	if cfg.CopywriterEnabled() {
		if err := openrouter.ValidateBaseURL(cfg.OpenRouter.BaseURL, cfg.OpenRouter.AllowedHosts); err != nil {
			return nil, pipeerr.New(pipeerr.InvalidConfiguration, err)
		}
		deps.Copywriter = openrouter.New(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.BaseURL)
	}

	s := NewWithDeps(cfg, deps, store, log)
	s.tools = tools
	return s, nil
}

// NewWithDeps builds a service around caller-provided collaborators.
func NewWithDeps(cfg *config.Config, deps usecase.Deps, store runs.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = runs.NewMemoryStore(cfg.Redis.RunTTL)
	}
	if deps.Log == nil {
		deps.Log = log
	}
	return &Service{
		uc:       usecase.New(deps),
		store:    store,
		log:      log,
		outRoot:  cfg.Paths.Output,
		defaults: cfg.Clips,
		langs:    cfg.Transcript.Languages,
		now:      time.Now,
	}
}

// Tools lists the external binaries the service shells out to.
func (s *Service) Tools() []ports.Tool { return s.tools }

func (s *Service) NewRunID() string { return newRunID(s.now()) }

// Run executes one request synchronously and tracks its progress in the run store.
// The manifest is written next to the clips on success.
func (s *Service) Run(ctx context.Context, req Request) (types.PipelineResult, error) {
	if req.RunID == "" {
		req.RunID = s.NewRunID()
	}
	log := s.log.With("run_id", req.RunID)

	if err := s.store.Create(ctx, runs.Record{
		ID:    req.RunID,
		URL:   req.URL,
		State: string(usecase.StateInit),
	}); err != nil {
		return types.PipelineResult{}, fmt.Errorf("record run: %w", err)
	}

	res, err := s.uc.Run(ctx, usecase.Input{
		URL:        req.URL,
		ClipLength: orDefault(req.ClipLength, float64(s.defaults.Length)),
		MaxClips:   intOrDefault(req.MaxClips, s.defaults.MaxClips),
		Step:       orDefault(req.Step, float64(s.defaults.Step)),
		Languages:  s.langs,
		OutRoot:    s.outRoot,
		RunID:      req.RunID,
		Progress: func(st usecase.State) {
			s.update(ctx, log, req.RunID, func(r *runs.Record) { r.State = string(st) })
		},
	})
	if err == nil {
		err = writeManifest(res)
	}
	if err != nil {
		code := "internal_error"
		if k, ok := pipeerr.KindOf(err); ok {
			code = string(k)
		}
		s.update(ctx, log, req.RunID, func(r *runs.Record) {
			r.State = string(usecase.StateFailed)
			r.Error = err.Error()
			r.ErrorCode = code
		})
		return types.PipelineResult{}, err
	}

	s.update(ctx, log, req.RunID, func(r *runs.Record) {
		r.State = string(usecase.StateDone)
		r.Result = &res
	})
	log.Info("run finished", "clips", len(res.Clips), "output_directory", res.OutputDirectory)
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (runs.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) update(ctx context.Context, log *logger.Logger, id string, fn func(*runs.Record)) {
	if err := s.store.Update(ctx, id, fn); err != nil {
		log.Warn("run store update failed", "error", err)
	}
}

func writeManifest(res types.PipelineResult) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(res.OutputDirectory, ManifestName), b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// newRunID is sortable by creation time and unique across concurrent runs.
func newRunID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func intOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// ensure adapters implement ports
var (
	_ ports.Downloader       = (*ytdlp.Adapter)(nil)
	_ ports.TranscriptSource = (*ytdlp.Subtitles)(nil)
	_ ports.TranscriptSource = (*whispercpp.Adapter)(nil)
	_ ports.TranscriptSource = (*chain.Transcripts)(nil)
	_ ports.Renderer         = (*ffmpeg.Adapter)(nil)
	_ ports.AudioExtractor   = (*ffmpeg.Adapter)(nil)
	_ ports.Copywriter       = (*openrouter.Adapter)(nil)
	_ ports.Tool             = (*ytdlp.Adapter)(nil)
	_ ports.Tool             = (*ffmpeg.Adapter)(nil)
	_ ports.Tool             = (*whispercpp.Adapter)(nil)
)
