package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meublog/blog-api/internal/application"
	"github.com/meublog/blog-api/pkg/response"
	"github.com/meublog/blog-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

const forgotAck = "if that email is registered, a reset link has been sent"

// ForgotPassword handles POST /users/auth/forgot-password. The response is
// the same generic acknowledgment whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		// Still answer generically; the failure is ours, not the caller's.
		h.Logger.WithError(err).Error("forgot-password failed")
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"message": forgotAck}, forgotAck, nil)
	c.JSON(resp.Status, resp)
}

// ResetPassword handles POST /users/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, application.ErrResetTokenInvalid) {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).Error("reset-password failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to reset password", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
	c.JSON(resp.Status, resp)
}
