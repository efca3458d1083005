package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/humont/shikigami-sub001/internal/task"
)

const maxQuerySize = 10 << 10 // 10KB

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTasks(c *gin.Context) {
	var (
		tasks []*task.Task
		err   error
	)

	switch {
	case c.Query("status") != "":
		var st task.Status
		st, err = task.ParseStatus(c.Query("status"))
		if err == nil {
			tasks, err = s.store.ListByStatus(st)
		}
	case c.Query("active") == "true":
		tasks, err = s.store.ListActive()
	default:
		tasks, err = s.store.List()
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleTask(c *gin.Context) {
	t, err := s.store.FindByPrefix(c.Param("id"), c.Query("deleted") == "true")
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    t,
	})
}

func (s *Server) handleDeps(c *gin.Context) {
	t, err := s.store.FindByPrefix(c.Param("id"), false)
	if err != nil {
		s.fail(c, err)
		return
	}

	depth := -1
	if d := c.Query("depth"); d != "" {
		depth, _ = strconv.Atoi(d)
	}

	graph, err := s.store.Traverse(t.ID, depth)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    t.ID,
		"graph":   graph,
	})
}

func (s *Server) handleAudit(c *gin.Context) {
	t, err := s.store.FindByPrefix(c.Param("id"), true)
	if err != nil {
		s.fail(c, err)
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	entries, err := s.store.Audit(t.ID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleLedger(c *gin.Context) {
	t, err := s.store.FindByPrefix(c.Param("id"), false)
	if err != nil {
		s.fail(c, err)
		return
	}

	entries, err := s.store.Ledger(t.ID, c.Query("type"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	tasks, err := s.store.ListByStatus(task.StatusReady)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	if s.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "search is disabled",
		})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "query parameter required",
		})
		return
	}
	if len(query) > maxQuerySize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "query exceeds maximum size of 10KB",
		})
		return
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	hits, err := s.index.Search(query, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}

func (s *Server) handlePromote(c *gin.Context) {
	n, err := s.store.PromoteEligible()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.tasksPromoted.Add(float64(n))

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"promoted": n,
	})
}

// fail maps store errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, task.ErrValidation):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
