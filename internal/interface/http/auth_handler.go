package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/application"
	"github.com/oksasatya/rentivu/internal/domain/entity"
	"github.com/oksasatya/rentivu/pkg/response"
	"github.com/oksasatya/rentivu/pkg/validation"
)

type AuthHandler struct {
	Auth *application.AuthService
	// Sessions, when set and live, serves the session state without a store read.
	Sessions *application.SessionWatcher
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, sessions *application.SessionWatcher, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type registerRequest struct {
	FullName        string `json:"fullName" binding:"required,fullname"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
	Phone           string `json:"phone" binding:"omitempty,phone"`
}

// userView is a User without its password hash.
type userView struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type authStateView struct {
	CurrentUser *userView  `json:"currentUser"`
	Users       []userView `json:"users"`
}

func toUserView(u entity.User) userView {
	return userView{ID: u.ID, FullName: u.FullName, Email: u.Email, Phone: u.Phone, CreatedAt: u.CreatedAt}
}

func toAuthStateView(s entity.AuthState) authStateView {
	out := authStateView{Users: make([]userView, 0, len(s.Users))}
	if s.CurrentUser != nil {
		v := toUserView(*s.CurrentUser)
		out.CurrentUser = &v
	}
	for _, u := range s.Users {
		out.Users = append(out.Users, toUserView(u))
	}
	return out
}

// State GET /api/auth/state
func (h *AuthHandler) State(c *gin.Context) {
	var state entity.AuthState
	if h.Sessions != nil && h.Sessions.Live() {
		state = h.Sessions.Snapshot()
	} else {
		state = h.Auth.State(c.Request.Context())
	}
	response.Success(c, http.StatusOK, toAuthStateView(state), "session state", nil)
}

// refreshSession brings the cached state up to date with a change this
// process just committed, ahead of the store notification.
func (h *AuthHandler) refreshSession(ctx context.Context) {
	if h.Sessions != nil {
		h.Sessions.Refresh(ctx)
	}
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	state, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.Add(metricLoginFailed, 1)
		writeError(c, h.Logger, err)
		return
	}
	metrics.Add(metricLoginOK, 1)
	h.refreshSession(c.Request.Context())
	response.Success(c, http.StatusOK, toAuthStateView(state), "login successful", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	state, err := h.Auth.Logout(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.refreshSession(c.Request.Context())
	response.Success(c, http.StatusOK, toAuthStateView(state), "logged out", nil)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	state, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	metrics.Add(metricRegistrations, 1)
	h.refreshSession(c.Request.Context())
	response.Success(c, http.StatusCreated, toAuthStateView(state), "registration successful", nil)
}
