package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/news"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the JSON body of a successful category response.
type Envelope struct {
	Total     int         `json:"total"`
	Items     []news.Item `json:"items"`
	Cached    bool        `json:"cached"`
	UpdatedAt string      `json:"updated_at"`
}

// NewEnvelope applies f to the result and shapes the response body.
func NewEnvelope(res news.Result, f news.Filter) Envelope {
	total, items := f.Apply(res.Items)
	return Envelope{
		Total:     total,
		Items:     items,
		Cached:    res.Cached,
		UpdatedAt: FormatTimestamp(res.UpdatedAt),
	}
}

// FormatTimestamp renders t as UTC ISO-8601 with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func (s *Server) handleCategory(cat news.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := news.ParseFilter(cat, c.Query("limit"), c.Query("source"), c.Query("q"))

		res, err := s.svc.Items(c.Request.Context(), cat, f.Fresh())
		if err != nil {
			logger.Error("category request failed", "category", cat.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": cat.ErrorMessage})
			return
		}

		c.JSON(http.StatusOK, NewEnvelope(res, f))
	}
}
