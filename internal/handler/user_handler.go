package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/auth"
	"boardbuilder/internal/model"
	"boardbuilder/internal/repository"
)

type UserHandler struct {
	users  repository.UserRepositoryInterface
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewUserHandler(users repository.UserRepositoryInterface, tokens *auth.TokenManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, logger: logger}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,min=3,max=30"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public shape of a user; the password hash never
// leaves the handler layer.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthResponse
// @Router /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("register email lookup failed", zap.Error(err))
		apiutil.DBError(c, "Failed to check existing users", err)
		return
	}
	if existing != nil {
		apiutil.Error(c, apiutil.CodeConflict, "Email is already registered", nil)
		return
	}

	existing, err = h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Error("register username lookup failed", zap.Error(err))
		apiutil.DBError(c, "Failed to check existing users", err)
		return
	}
	if existing != nil {
		apiutil.Error(c, apiutil.CodeConflict, "Username is already taken", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apiutil.Error(c, apiutil.CodeInternalError, "Failed to hash password", nil)
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       req.Username,
		DisplayName:    req.DisplayName,
		HashedPassword: string(hashed),
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.logger.Error("register create failed", zap.Error(err))
		apiutil.DBError(c, "Failed to create user", err)
		return
	}

	token, err := h.tokens.Generate(user.ID.String())
	if err != nil {
		apiutil.Error(c, apiutil.CodeInternalError, "Failed to generate token", nil)
		return
	}

	apiutil.Success(c, http.StatusCreated, AuthResponse{Token: token, User: userResponse(user)}, nil)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Router /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.Error(c, apiutil.CodeInvalidJSON, err.Error(), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		apiutil.DBError(c, "Failed to look up user", err)
		return
	}
	if user == nil {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Invalid email or password", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		apiutil.Error(c, apiutil.CodeUnauthorized, "Invalid email or password", nil)
		return
	}

	token, err := h.tokens.Generate(user.ID.String())
	if err != nil {
		apiutil.Error(c, apiutil.CodeInternalError, "Failed to generate token", nil)
		return
	}

	apiutil.Success(c, http.StatusOK, AuthResponse{Token: token, User: userResponse(user)}, nil)
}
