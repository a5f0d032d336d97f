package handlers

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/viralcut/internal/http/response"
	"github.com/forPelevin/viralcut/internal/logger"
	"github.com/forPelevin/viralcut/internal/pipeline"
	"github.com/forPelevin/viralcut/internal/runs"
)

type RunsHandler struct {
	runner Runner
	log    *logger.Logger
}

func NewRunsHandler(runner Runner, log *logger.Logger) *RunsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RunsHandler{runner: runner, log: log.With("handler", "runs")}
}

// GET /runs/:id
func (h *RunsHandler) Get(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"run": rec})
}

// GET /runs/:id/files/:name
//
// Only files the run itself produced are served: its clips and its manifest.
func (h *RunsHandler) File(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_name", errors.New("invalid file name"))
		return
	}
	if rec.Result == nil {
		response.RespondError(c, http.StatusNotFound, "file_not_found", errors.New("run has not produced files yet"))
		return
	}

	path := ""
	if name == pipeline.ManifestName {
		path = filepath.Join(rec.Result.OutputDirectory, pipeline.ManifestName)
	}
	for _, clip := range rec.Result.Clips {
		if filepath.Base(clip.Path) == name {
			path = clip.Path
			break
		}
	}
	if path == "" {
		response.RespondError(c, http.StatusNotFound, "file_not_found", errors.New("file not found"))
		return
	}
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		response.RespondError(c, http.StatusNotFound, "file_not_found", errors.New("file not found"))
		return
	}
	c.Header("Content-Type", contentType(name))
	c.FileAttachment(path, name)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (h *RunsHandler) lookup(c *gin.Context) (runs.Record, bool) {
	rec, err := h.runner.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, runs.ErrNotFound) {
		response.RespondError(c, http.StatusNotFound, "run_not_found", err)
		return runs.Record{}, false
	}
	if err != nil {
		h.log.Error("run lookup failed", "run_id", c.Param("id"), "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("run lookup failed"))
		return runs.Record{}, false
	}
	return rec, true
}
