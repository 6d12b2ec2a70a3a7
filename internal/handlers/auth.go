package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/dto"
	"TASKMANAGER_BACK-END/internal/middleware"
	"TASKMANAGER_BACK-END/internal/models"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users  repository.UserStore
	jwtCfg *config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users repository.UserStore, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{users: users, jwtCfg: jwtCfg}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with name, email, and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 200 {object} dto.UserResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or email already registered"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	// Limits count characters, not bytes
	if n := utf8.RuneCountInString(req.Name); n < 2 || n > 50 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "name must be 2-50 characters")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email must be a valid address")
		return
	}
	if len(req.Password) < 6 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "password must be at least 6 characters")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to process registration")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}

	// The store insert is the uniqueness check; no pre-read, so two
	// concurrent registrations with the same email cannot both win.
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Email already registered", "An account with this email already exists")
			return
		}
		log.Error().Err(err).Msg("register: create user failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to create user")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: utils.FormatTimestamp(user.CreatedAt),
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Email and password are required")
		return
	}

	// Unknown email and wrong password answer identically, and both paths
	// pay for one bcrypt comparison.
	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		utils.CheckDummyPassword(req.Password)
		utils.WriteUnauthorizedResponse(w, "Incorrect email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		utils.WriteUnauthorizedResponse(w, "Incorrect email or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, h.jwtCfg)
	if err != nil {
		log.Error().Err(err).Msg("login: token generation failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to generate token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me returns the current user's profile
// @Summary Get current user
// @Description Get the authenticated user's profile information
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse "User profile retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "User not authenticated")
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "User not authenticated")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: utils.FormatTimestamp(user.CreatedAt),
	})
}
