package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meublog/blog-api/internal/application"
	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/interface/middleware"
	"github.com/meublog/blog-api/pkg/response"
	"github.com/meublog/blog-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Avatar   string `json:"avatar" binding:"omitempty,base64"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar":     response.DataURI(u.Avatar, ""),
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Register handles POST /users/register. The avatar is optional and
// accepted either as a multipart "avatar" file or a base64 JSON field.
func (h *UserHandler) Register(c *gin.Context) {
	var in application.RegisterInput

	if isMultipart(c) {
		in.Name = c.PostForm("name")
		in.Email = c.PostForm("email")
		in.Password = c.PostForm("password")
		if in.Name == "" || in.Email == "" || len(in.Password) < 8 {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"payload": "name, email and a password of at least 8 characters are required"})
			c.JSON(resp.Status, resp)
			return
		}
		avatar, err := formFileBytes(c, "avatar")
		if err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "unreadable avatar upload", nil)
			c.JSON(resp.Status, resp)
			return
		}
		in.Avatar = avatar
	} else {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			c.JSON(resp.Status, resp)
			return
		}
		in.Name, in.Email, in.Password = req.Name, req.Email, req.Password
		if req.Avatar != "" {
			b, err := base64.StdEncoding.DecodeString(req.Avatar)
			if err != nil {
				resp := response.Error[any](c, http.StatusBadRequest, "invalid avatar encoding", nil)
				c.JSON(resp.Status, resp)
				return
			}
			in.Avatar = b
		}
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			resp := response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		resp := response.Error[any](c, http.StatusBadRequest, "failed to register", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusCreated, userJSON(u), "user registered", nil)
	c.JSON(resp.Status, resp)
}

// Login handles POST /users/login and returns {token, user}.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid credentials", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		c.JSON(resp.Status, resp)
		return
	}

	resp := response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	}, "login successful", gin.H{"expires_at": exp})
	c.JSON(resp.Status, resp)
}

// GetProfile handles GET /users/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := middleware.Principal(c)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
	c.JSON(resp.Status, resp)
}

// UpdateProfile handles PATCH /users/profile. Name comes from JSON or the
// multipart form; the avatar only from the multipart "avatar" field.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := middleware.Principal(c)
	var in application.UpdateProfileInput

	if isMultipart(c) {
		in.Name = c.PostForm("name")
		avatar, err := formFileBytes(c, "avatar")
		if err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "unreadable avatar upload", nil)
			c.JSON(resp.Status, resp)
			return
		}
		in.Avatar = avatar
	} else {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			c.JSON(resp.Status, resp)
			return
		}
		in.Name = req.Name
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, in)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			resp := response.Error[any](c, http.StatusUnauthorized, "unknown user", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("profile update failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
	c.JSON(resp.Status, resp)
}
