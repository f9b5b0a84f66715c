package handlers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/yourusername/fileconv-go/pkg/logger"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// LogHandler handles log-related requests
type LogHandler struct {
	logsDir   string
	logReader *logger.LogReader
}

// NewLogHandler creates a new log handler
func NewLogHandler(logsDir string) *LogHandler {
	return &LogHandler{
		logsDir:   logsDir,
		logReader: logger.NewLogReader(logsDir),
	}
}

// GetLogs handles GET /api/v1/logs/:category
func (h *LogHandler) GetLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	entries, err := h.logReader.ReadLogs(category, date, limitQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"date":     date.Format("2006-01-02"),
		"count":    len(entries),
		"entries":  entries,
	})
}

// SearchLogs handles GET /api/v1/logs/:category/search
func (h *LogHandler) SearchLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	date, ok := dateQuery(c)
	if !ok {
		return
	}

	entries, err := h.logReader.SearchLogs(category, date, query, limitQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"query":    query,
		"count":    len(entries),
		"entries":  entries,
	})
}

// GetCategories handles GET /api/v1/logs/categories
func (h *LogHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": lo.Map(logger.Categories(), func(cat logger.LogCategory, _ int) string {
			return string(cat)
		}),
	})
}

// ExportLogs handles GET /api/v1/logs/:category/export
func (h *LogHandler) ExportLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	logPath := logger.LogPath(h.logsDir, category, date)
	if _, err := os.Stat(logPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no logs for this date"})
		return
	}

	filename := string(category) + "-" + date.Format("20060102") + ".log"
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/octet-stream")

	c.File(logPath)
}

func categoryParam(c *gin.Context) (logger.LogCategory, bool) {
	category := logger.LogCategory(c.Param("category"))
	if !logger.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return "", false
	}
	return category, true
}

func dateQuery(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func limitQuery(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLogLimit)))
	if err != nil || limit < 0 {
		return defaultLogLimit
	}
	if limit > maxLogLimit {
		return maxLogLimit
	}
	return limit
}
