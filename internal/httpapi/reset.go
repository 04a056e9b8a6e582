package httpapi

import (
	"context"
	"errors"
	"net/http"

	"phonebank/internal/assignment"
	"phonebank/internal/resetcode"
	"phonebank/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallerDirectory is the storage surface the reset flow needs.
type CallerDirectory interface {
	CallerByPhone(ctx context.Context, areaID, phone string) (assignment.Caller, bool, error)
	UpdateCallerPin(ctx context.Context, callerID, pin string) error
}

// Notifier delivers a reset code to a caller. SMS delivery itself is an
// external collaborator; the engine only hands over the code.
type Notifier interface {
	SendResetCode(ctx context.Context, phone, code string) error
}

// ResetHandlers are public (pre-auth) endpoints for the PIN reset flow.
type ResetHandlers struct {
	Directory CallerDirectory
	Codes     *resetcode.Store
	Notifier  Notifier
}

type resetRequestBody struct {
	AreaID string `json:"area_id"`
	Phone  string `json:"phone"`
}

// Request issues a one-time code and hands it to the notifier. The response
// is the same whether or not the phone exists, so the endpoint cannot be
// used to probe for registered numbers.
func (h ResetHandlers) Request(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AreaID == "" || req.Phone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "area_id and phone required"})
		return
	}

	caller, ok, err := h.Directory.CallerByPhone(c.Request.Context(), req.AreaID, req.Phone)
	if err != nil {
		logger.FromGin(c).Error("storage failure", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if ok {
		code, err := h.Codes.Issue(c.Request.Context(), caller.ID)
		if err != nil && !errors.Is(err, resetcode.ErrThrottled) {
			logger.FromGin(c).Error("reset code issue failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err == nil {
			if err := h.Notifier.SendResetCode(c.Request.Context(), caller.Phone, code); err != nil {
				logger.FromGin(c).Error("reset code delivery failed", "err", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{})
}

type resetConfirmBody struct {
	AreaID string `json:"area_id"`
	Phone  string `json:"phone"`
	Code   string `json:"code"`
	NewPin string `json:"new_pin"`
}

// Confirm consumes the code and sets the new PIN.
func (h ResetHandlers) Confirm(c *gin.Context) {
	var req resetConfirmBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AreaID == "" || req.Phone == "" || req.Code == "" || req.NewPin == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "area_id, phone, code, new_pin required"})
		return
	}

	caller, ok, err := h.Directory.CallerByPhone(c.Request.Context(), req.AreaID, req.Phone)
	if err != nil {
		logger.FromGin(c).Error("storage failure", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid code"})
		return
	}

	if err := h.Codes.Verify(c.Request.Context(), caller.ID, req.Code); err != nil {
		if errors.Is(err, resetcode.ErrCodeInvalid) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid code"})
			return
		}
		logger.FromGin(c).Error("reset code verify failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.Directory.UpdateCallerPin(c.Request.Context(), caller.ID, req.NewPin); err != nil {
		logger.FromGin(c).Error("pin update failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
