package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/response"
	"github.com/nevtik/eduvate-backend/internal/service"
)

// RankingHandler handles leaderboard endpoints.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// Reveal godoc
// POST /api/rankings/reveal
func (h *RankingHandler) Reveal(c *gin.Context) {
	if err := h.rankingService.SetVisibility(c.Request.Context(), true); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isRevealed": true})
}

// Hide godoc
// POST /api/rankings/hide
func (h *RankingHandler) Hide(c *gin.Context) {
	if err := h.rankingService.SetVisibility(c.Request.Context(), false); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isRevealed": false})
}

// Top godoc
// GET /api/rankings
// Top students by combined task grade and quiz score. Students see an
// empty list while the ranking is hidden.
func (h *RankingHandler) Top(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	payload, err := h.rankingService.TopStudents(c.Request.Context(), claims.Role)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}
