package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errx "github.com/pcbuilder-api/server/internal/core/error"
	"github.com/pcbuilder-api/server/internal/recommender"
	"github.com/pcbuilder-api/server/internal/recommender/model"
	"github.com/pcbuilder-api/server/internal/store"
	logx "github.com/pcbuilder-api/server/pkg/logger"
)

// Handler holds the dependencies shared by all routes.
type Handler struct {
	recommender *recommender.Service
	builds      store.BuildRepository
	requestLog  store.RequestLog
}

type recommendationRequest struct {
	Budget         *float64           `json:"budget"`
	Currency       string             `json:"currency"`
	DesiredParts   model.DesiredParts `json:"desired_parts"`
	PreferredGames []string           `json:"preferred_games"`
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Snapshot every attempt, including ones that fail validation below.
	var rawPayload any
	_ = json.Unmarshal(body, &rawPayload)
	h.requestLog.Log(c.Request.Context(), c.GetHeader(userHeader), rawPayload)

	var req recommendationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget"})
		return
	}
	if req.Budget == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget is required"})
		return
	}
	if *req.Budget <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget"})
		return
	}

	if !h.recommender.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errx.AIUnavailableMessage})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "THB"
	}
	q := model.BudgetQuery{
		Budget:         *req.Budget,
		Currency:       currency,
		DesiredParts:   req.DesiredParts,
		PreferredGames: req.PreferredGames,
	}

	res := h.recommender.Recommend(c.Request.Context(), q)
	if res.Error != "" {
		logx.Warn().Str("error", res.Error).Msg("recommendation pipeline returned an error result")
		c.JSON(http.StatusInternalServerError, res)
		return
	}

	// Echo the query back so the client can persist it alongside a build.
	res.SourcePrompt = &q
	c.JSON(http.StatusOK, res)
}

type explanationRequest struct {
	SelectedBuild map[string]any   `json:"selected_build"`
	OriginalQuery *json.RawMessage `json:"original_query"`
}

// Explain handles POST /api/v1/explanations.
func (h *Handler) Explain(c *gin.Context) {
	var req explanationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.SelectedBuild) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selected_build is required"})
		return
	}
	if req.OriginalQuery == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_query is required"})
		return
	}
	var q model.BudgetQuery
	if err := json.Unmarshal(*req.OriginalQuery, &q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_query is required"})
		return
	}

	if !h.recommender.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errx.AIUnavailableMessage})
		return
	}

	res := h.recommender.Explain(c.Request.Context(), req.SelectedBuild, q)
	if res.Error != "" {
		logx.Warn().Str("error", res.Error).Msg("explanation pipeline returned an error result")
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

type saveBuildRequest struct {
	Name                string          `json:"name"`
	BuildDetails        json.RawMessage `json:"build_details"`
	SourcePromptDetails json.RawMessage `json:"source_prompt_details"`
	UserNotes           string          `json:"user_notes"`
}

// SaveBuild handles POST /api/v1/builds.
func (h *Handler) SaveBuild(c *gin.Context) {
	var req saveBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.BuildDetails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "build_details is required"})
		return
	}

	b := &store.SavedBuild{
		UserID:              c.GetHeader(userHeader),
		Name:                req.Name,
		BuildDetails:        req.BuildDetails,
		SourcePromptDetails: req.SourcePromptDetails,
		UserNotes:           req.UserNotes,
	}
	if err := h.builds.Save(c.Request.Context(), b); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBuilds handles GET /api/v1/builds.
func (h *Handler) ListBuilds(c *gin.Context) {
	builds, err := h.builds.ListByUser(c.Request.Context(), c.GetHeader(userHeader))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"builds": builds})
}

// GetBuild handles GET /api/v1/builds/:id. A build owned by someone else is
// indistinguishable from a missing one.
func (h *Handler) GetBuild(c *gin.Context) {
	b, err := h.ownedBuild(c)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DeleteBuild handles DELETE /api/v1/builds/:id.
func (h *Handler) DeleteBuild(c *gin.Context) {
	b, err := h.ownedBuild(c)
	if err != nil {
		abortError(c, err)
		return
	}
	if err := h.builds.Delete(c.Request.Context(), b.ID); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ownedBuild(c *gin.Context) (*store.SavedBuild, error) {
	b, err := h.builds.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if b.UserID != c.GetHeader(userHeader) {
		return nil, store.ErrNotFound
	}
	return b, nil
}

// AdminListBuilds handles GET /api/v1/admin/builds.
func (h *Handler) AdminListBuilds(c *gin.Context) {
	builds, err := h.builds.ListAll(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"builds": builds})
}

// AdminDeleteBuild handles DELETE /api/v1/admin/builds/:id. No ownership
// check; admins may delete any build.
func (h *Handler) AdminDeleteBuild(c *gin.Context) {
	if err := h.builds.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminStats handles GET /api/v1/admin/stats.
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := store.CollectStats(c.Request.Context(), h.builds, h.requestLog)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// abortError converts storage and application errors into JSON error bodies.
func abortError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "saved build not found"})
		return
	}
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		logx.Error().Err(err).Msg("request failed")
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}
	logx.Error().Err(err).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": errx.SystemErrorMessage})
}
