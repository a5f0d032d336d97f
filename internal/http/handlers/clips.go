package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/viralcut/internal/config"
	"github.com/forPelevin/viralcut/internal/http/response"
	"github.com/forPelevin/viralcut/internal/logger"
	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/pipeline"
	"github.com/forPelevin/viralcut/internal/runs"
	"github.com/forPelevin/viralcut/internal/types"
)

// Runner executes pipeline runs and reports on them.
type Runner interface {
	NewRunID() string
	Run(ctx context.Context, req pipeline.Request) (types.PipelineResult, error)
	Get(ctx context.Context, id string) (runs.Record, error)
}

type ClipsHandler struct {
	runner   Runner
	defaults config.ClipsConfig
	log      *logger.Logger
}

func NewClipsHandler(runner Runner, defaults config.ClipsConfig, log *logger.Logger) *ClipsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ClipsHandler{runner: runner, defaults: defaults, log: log.With("handler", "clips")}
}

type createClipsRequest struct {
	URL string `json:"url"`
	// VideoURL is accepted as an alias of URL.
	VideoURL   string `json:"video_url"`
	ClipLength int    `json:"clip_length" binding:"min=15,max=120"`
	MaxClips   int    `json:"max_clips" binding:"min=1,max=10"`
	Step       int    `json:"step" binding:"min=1,max=30"`
}

type outcome struct {
	res types.PipelineResult
	err error
}

// POST /clips
//
// The run continues on its own goroutine if the client disconnects; its result stays
// available under GET /runs/:id using the X-Run-ID response header.
func (h *ClipsHandler) Create(c *gin.Context) {
	req := createClipsRequest{
		ClipLength: h.defaults.Length,
		MaxClips:   h.defaults.MaxClips,
		Step:       h.defaults.Step,
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		url = strings.TrimSpace(req.VideoURL)
	}
	if url == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("url is required"))
		return
	}

	runID := h.runner.NewRunID()
	c.Header("X-Run-ID", runID)
	log := h.log.With("run_id", runID)

	done := make(chan outcome, 1)
	runCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		res, err := h.runner.Run(runCtx, pipeline.Request{
			RunID:      runID,
			URL:        url,
			ClipLength: float64(req.ClipLength),
			MaxClips:   req.MaxClips,
			Step:       float64(req.Step),
		})
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			h.respondRunError(c, log, o.err)
			return
		}
		response.RespondOK(c, o.res)
	case <-c.Request.Context().Done():
		log.Info("client disconnected, run continues in background")
		c.Abort()
	}
}

func (h *ClipsHandler) respondRunError(c *gin.Context, log *logger.Logger, err error) {
	var pe *pipeerr.Error
	if errors.As(err, &pe) {
		response.RespondError(c, http.StatusBadRequest, string(pe.Kind), err)
		return
	}
	log.Error("run failed unexpectedly", "error", err)
	response.RespondError(c, http.StatusInternalServerError, "internal_error",
		errors.New("unexpected error while generating clips"))
}
