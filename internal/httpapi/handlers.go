package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"phonebank/internal/assignment"
	"phonebank/internal/auth"
	"phonebank/internal/leaderboard"
	"phonebank/internal/reporting"
	"phonebank/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, map errors
// to statuses, return JSON. The error taxonomy lives here and only here:
// expected engine outcomes become 4xx bodies, storage failures become 500s.
type Handlers struct {
	Auth          *auth.Manager
	Authenticator *auth.Authenticator
	Engine        *assignment.Service
	Leaderboard   *leaderboard.Service
	Reporting     *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	AreaID string `json:"area_id"`
	Phone  string `json:"phone"`
	Pin    string `json:"pin"`
}

// Login validates phone + PIN and issues an access token.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Authenticator == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AreaID == "" || req.Phone == "" || req.Pin == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "area_id, phone, pin required"})
		return
	}

	caller, err := h.Authenticator.Authenticate(c.Request.Context(), req.AreaID, req.Phone, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCredentialInvalid):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid phone or pin"})
		case errors.Is(err, auth.ErrThrottled):
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		default:
			h.storageError(c, err)
		}
		return
	}

	tok, err := h.Auth.IssueAccessToken(time.Now(), caller.ID, caller.AreaID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok, "caller": caller})
}

// --- Sessions ---

// Reserve hands the caller a client to call (or resumes their open
// session). "No client available" and "campaign closed" are expected
// outcomes, not server errors.
func (h Handlers) Reserve(c *gin.Context) {
	callerID, areaID, ok := identity(c)
	if !ok {
		return
	}

	res, err := h.Engine.Reserve(c.Request.Context(), callerID, areaID)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrCampaignNotCallable):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "campaign not callable"})
		case errors.Is(err, assignment.ErrNoCandidate):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no client available"})
		case errors.Is(err, assignment.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		default:
			h.storageError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// Complete closes the caller's session with an outcome.
func (h Handlers) Complete(c *gin.Context) {
	callerID, _, ok := identity(c)
	if !ok {
		return
	}

	var req assignment.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	call, err := h.Engine.Complete(c.Request.Context(), callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid outcome or client reference"})
		case errors.Is(err, assignment.ErrNoActiveSession):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no active session for this client"})
		default:
			h.storageError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": call})
}

// GiveUp abandons the caller's session without recording an outcome.
func (h Handlers) GiveUp(c *gin.Context) {
	callerID, _, ok := identity(c)
	if !ok {
		return
	}

	if err := h.Engine.GiveUp(c.Request.Context(), callerID); err != nil {
		switch {
		case errors.Is(err, assignment.ErrNoActiveSession):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no active session"})
		default:
			h.storageError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// --- Leaderboard ---

func (h Handlers) GetLeaderboard(c *gin.Context) {
	callerID, _, ok := identity(c)
	if !ok {
		return
	}
	campaignID := c.Query("campaign_id")
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	top, err := h.Leaderboard.TopCallers(c.Request.Context(), campaignID, limit)
	if err != nil {
		if errors.Is(err, leaderboard.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
			return
		}
		h.storageError(c, err)
		return
	}
	mine, err := h.Leaderboard.RankOf(c.Request.Context(), campaignID, callerID)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top": top, "me": mine})
}

// --- Admin/reporting reads ---

func (h Handlers) ClientHistory(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}
	clientID := c.Param("client_id")
	campaignID := c.Query("campaign_id")

	history, err := h.Engine.History(c.Request.Context(), clientID, campaignID)
	if err != nil {
		if errors.Is(err, assignment.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "client_id and campaign_id required"})
			return
		}
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h Handlers) CampaignSummary(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}
	out, err := h.Reporting.CampaignSummary(c.Request.Context(), reporting.CampaignSummaryRequest{
		CampaignID: c.Query("campaign_id"),
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
			return
		}
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

func identity(c *gin.Context) (callerID, areaID string, ok bool) {
	callerID, err := auth.CallerID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return "", "", false
	}
	areaID, err = auth.AreaID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "area identity required"})
		return "", "", false
	}
	return callerID, areaID, true
}

// storageError logs and reports an unexpected failure. Never swallowed:
// the client sees a 500 and the log carries the cause.
func (h Handlers) storageError(c *gin.Context, err error) {
	logger.FromGin(c).Error("storage failure", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
