package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukemcguire/docscrape/export"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/task"
	"github.com/lukemcguire/docscrape/urlutil"
)

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	URL      string `json:"url" binding:"required,url"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

// ScrapeResponse acknowledges a started crawl.
type ScrapeResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ResultResponse is the body of GET /api/result/:task_id.
type ResultResponse struct {
	TaskID      string            `json:"task_id"`
	URL         string            `json:"url"`
	Status      string            `json:"status"`
	Format      string            `json:"format"`
	Content     string            `json:"content"`
	PageCount   int               `json:"page_count"`
	FailedPages []result.Failure  `json:"failed_pages"`
	Pages       map[string]string `json:"pages,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// Handler serves the crawl API.
type Handler struct {
	runner *task.Runner
	store  *task.Store
	// crawls run under base rather than the request context
	base context.Context
	log  logger.Logger
	now  func() time.Time
}

// NewHandler returns a Handler submitting crawls to runner. Crawls started
// through it are cancelled when base ends.
func NewHandler(base context.Context, runner *task.Runner, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		runner: runner,
		store:  runner.Store(),
		base:   base,
		log:    log,
		now:    time.Now,
	}
}

// Scrape handles POST /api/scrape.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if !urlutil.IsHTTPScheme(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must use http or https"})
		return
	}
	if _, err := export.ParseFormat(req.Format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.runner.Submit(h.base, task.Request{
		URL:      req.URL,
		Format:   req.Format,
		Filename: req.Filename,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ScrapeResponse{
		TaskID:  id,
		Status:  "started",
		Message: "crawl started",
	})
}

// Progress handles GET /api/progress/:task_id.
func (h *Handler) Progress(c *gin.Context) {
	snap := h.store.Status(c.Param("task_id"))
	if snap.Status == task.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Tasks handles GET /api/tasks.
func (h *Handler) Tasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.store.List()})
}

// Result handles GET /api/result/:task_id.
func (h *Handler) Result(c *gin.Context) {
	id := c.Param("task_id")
	res, ok := h.readyResult(c, id)
	if !ok {
		return
	}

	resp := ResultResponse{
		TaskID:      id,
		URL:         h.store.Status(id).URL,
		Status:      "success",
		Format:      string(res.Format),
		Content:     res.Markdown,
		PageCount:   len(res.Mapping),
		FailedPages: res.Failures,
		Timestamp:   h.now().Format(time.RFC3339),
	}
	if resp.FailedPages == nil {
		resp.FailedPages = []result.Failure{}
	}
	if res.Format == export.FormatJSON {
		resp.Pages = res.Mapping
	}
	c.JSON(http.StatusOK, resp)
}

// Download handles GET /api/download/:task_id.
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("task_id")
	res, ok := h.readyResult(c, id)
	if !ok {
		return
	}

	name := export.DownloadName(h.store.Status(id).URL, res.Format, h.now())
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	c.Data(http.StatusOK, res.Format.ContentType(), res.Data)
}

// readyResult writes the error response and returns false unless id has a
// non-empty completed result.
func (h *Handler) readyResult(c *gin.Context, id string) (*task.Result, bool) {
	res, err := h.store.Result(id)
	switch {
	case errors.Is(err, task.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return nil, false
	case errors.Is(err, task.ErrNotReady):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if res.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no content was extracted"})
		return nil, false
	}
	return res, true
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
