package agent

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/export"
	"github.com/rileyhilliard/systrix/internal/metrics"
	"github.com/rileyhilliard/systrix/internal/procview"
)

// DefaultProcessLimit is how many processes /processes returns by default.
const DefaultProcessLimit = 50

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	LastUpdate string `json:"last_update,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	Clients    int    `json:"clients"`
}

type metricsResponse struct {
	CPU       metrics.CPUSnapshot    `json:"cpu"`
	Memory    metrics.MemorySnapshot `json:"memory"`
	Timestamp string                 `json:"timestamp"`
}

type processesResponse struct {
	Processes []metrics.ProcessInfo `json:"processes"`
	Count     int                   `json:"count"`
	Total     int                   `json:"total"`
}

type processQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Sort   string `form:"sort" binding:"omitempty,oneof=cpu memory mem io disk pid name"`
	Filter string `form:"filter" binding:"max=256"`
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.Error("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		respondError(c, http.StatusInternalServerError,
			errors.New(errors.ErrAgent, "Internal server error", ""))
	}))
	r.Use(s.requestLog())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/processes", s.handleProcesses)
	r.GET("/snapshot", s.handleSnapshot)
	r.GET("/ws", s.handleWebsocket)
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound,
			errors.New(errors.ErrNotFound, "No such endpoint: "+c.Request.URL.Path,
				"Available: /health /metrics /processes /snapshot /ws"))
	})
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func respondError(c *gin.Context, status int, err error) {
	info := errorInfo{Code: errors.CodeOf(err), Message: errors.Describe(err)}
	var se *errors.Error
	if stderrors.As(err, &se) {
		info.Message = se.Message
		info.Suggestion = se.Suggestion
	}
	if info.Code == "" {
		info.Code = errors.ErrAgent
	}
	c.AbortWithStatusJSON(status, errorBody{Error: info})
}

// withSnapshot answers 503 until the first refresh has landed.
func (s *Server) withSnapshot(c *gin.Context) (cacheEntry, bool) {
	e, ok := s.cached()
	if !ok {
		err := errors.New(errors.ErrAcquire, "No snapshot available yet", "Retry after the first refresh")
		if e.lastErr != nil {
			err = errors.WrapWithCode(e.lastErr, errors.ErrAcquire, "No snapshot available yet", "")
		}
		respondError(c, http.StatusServiceUnavailable, err)
		return cacheEntry{}, false
	}
	return e, true
}

func (s *Server) handleHealth(c *gin.Context) {
	e, ok := s.cached()
	resp := healthResponse{Status: "ok", Version: s.opts.Version, Clients: s.hub.count()}
	if ok {
		resp.LastUpdate = e.updated.UTC().Format(time.RFC3339)
	}
	if e.lastErr != nil {
		resp.Status = "degraded"
		resp.LastError = errors.Describe(e.lastErr)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMetrics(c *gin.Context) {
	e, ok := s.withSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, metricsResponse{
		CPU:       e.snapshot.CPU,
		Memory:    e.snapshot.Memory,
		Timestamp: e.snapshot.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProcesses(c *gin.Context) {
	var q processQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, errors.WrapWithCode(err, errors.ErrAgent,
			"Invalid query parameters", "limit is 1-1000; sort is one of cpu, memory, io, pid, name"))
		return
	}
	e, ok := s.withSnapshot(c)
	if !ok {
		return
	}

	key, _ := procview.ParseSortKey(q.Sort)
	limit := q.Limit
	if limit == 0 {
		limit = DefaultProcessLimit
	}

	procs := make([]metrics.ProcessInfo, len(e.snapshot.Processes))
	copy(procs, e.snapshot.Processes)
	procview.SortProcesses(procs, key)
	if f := strings.TrimSpace(q.Filter); f != "" {
		idx := procview.Filter(procs, f)
		filtered := make([]metrics.ProcessInfo, 0, len(idx))
		for _, i := range idx {
			filtered = append(filtered, procs[i])
		}
		procs = filtered
	}
	total := len(procs)
	procs = procview.Limit(procs, limit)

	c.JSON(http.StatusOK, processesResponse{Processes: procs, Count: len(procs), Total: total})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	e, ok := s.withSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, export.NewBundle(e.snapshot, s.opts.Now()))
}

// handleWebsocket streams a bundle frame after every refresh, starting with
// the cached one.
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: %v", err)
		return
	}

	cl := newClient(s.hub, conn)
	if e, ok := s.cached(); ok {
		if frame, err := marshalBundle(e.snapshot, s.opts.Now()); err == nil {
			cl.send <- frame
		}
	}
	s.hub.register(cl)
	s.log.Info("websocket client connected from %s", conn.RemoteAddr())

	go cl.writePump()
	go cl.readPump()
}
