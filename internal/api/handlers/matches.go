package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/middleware"
	"github.com/playmatatu/pong/internal/models"
)

// MaxImportBytes bounds the body of an imported log.
const MaxImportBytes = 8 << 20

type simulateRequest struct {
	Seed *int64 `json:"seed"`
}

// summary drops the event log from a match response.
func summary(m *models.Match) models.MatchView {
	v := m.View()
	v.Events = nil
	return v
}

// SimulateMatch plays and archives a bot match. Without a seed one is picked
// from the clock and returned so the match can be reproduced.
func SimulateMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req simulateRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}
		seed := time.Now().UnixNano()
		if req.Seed != nil {
			seed = *req.Seed
		}

		m, err := svc.Simulate(c.Request.Context(), seed)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Match-ID", m.ID)
		c.JSON(http.StatusCreated, summary(m))
	}
}

// ImportMatch archives an exported event log sent as the raw request body.
func ImportMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportBytes))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "log too large"})
			return
		}

		m, err := svc.Import(c.Request.Context(), body)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Printf("[API] Match %s imported by %s", m.ID, c.GetString(middleware.SubjectKey))
		c.Header("X-Match-ID", m.ID)
		c.JSON(http.StatusCreated, summary(m))
	}
}

// ListMatches returns archived match summaries, newest first.
func ListMatches(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit", 20)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		offset, ok := queryInt(c, "offset", 0)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}

		matches, err := svc.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		views := make([]models.MatchView, len(matches))
		for i := range matches {
			views[i] = summary(&matches[i])
		}
		c.JSON(http.StatusOK, gin.H{
			"matches": views,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

// GetMatch returns one match including its event log.
func GetMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, m.View())
	}
}

// ExportMatch downloads the event log in the import format.
func ExportMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="match-%s.json"`, m.ID))
		c.Data(http.StatusOK, "application/json", m.Events)
	}
}

// VerifyMatch replays a match and reports how many events it reproduced.
func VerifyMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Verify(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// DeleteMatch removes a match. Admin only.
func DeleteMatch(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
