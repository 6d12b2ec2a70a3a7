package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/dto"
	"TASKMANAGER_BACK-END/internal/middleware"
	"TASKMANAGER_BACK-END/internal/models"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/utils"
)

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	users        repository.UserStore
	oauth2Config *oauth2.Config
	jwtCfg       *config.JWTConfig
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(users repository.UserStore, oauthCfg *config.GoogleOAuthConfig, jwtCfg *config.JWTConfig) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     oauthCfg.ClientID,
		ClientSecret: oauthCfg.ClientSecret,
		RedirectURL:  oauthCfg.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleAuthHandler{
		users:        users,
		oauth2Config: oauth2Config,
		jwtCfg:       jwtCfg,
	}
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// State parameter for CSRF protection
	state := uuid.New().String()
	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: authURL,
		State:   state,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Handle Google OAuth callback with authorization code
// @Tags authentication
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string false "State parameter for CSRF protection"
// @Success 200 {object} dto.TokenResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Missing authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid authorization code")
		return
	}

	userInfo, err := h.getGoogleUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("google callback: userinfo fetch failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to get user info")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), userInfo.Email)
	if err != nil {
		// First Google sign-in for this email creates the account
		user, err = h.createGoogleUser(r.Context(), userInfo)
		if err != nil {
			log.Error().Err(err).Msg("google callback: create user failed")
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to create user")
			return
		}
	}

	jwtToken, err := middleware.GenerateToken(user.ID, h.jwtCfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to generate token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{
		AccessToken: jwtToken,
		TokenType:   "bearer",
	})
}

// getGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) getGoogleUserInfo(ctx context.Context, accessToken string) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	})))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Verified: verified,
	}, nil
}

// createGoogleUser creates a new user from Google OAuth data. The account
// has no usable password; password login against the empty digest always fails.
func (h *GoogleAuthHandler) createGoogleUser(ctx context.Context, googleUser *dto.GoogleUserInfo) (*models.User, error) {
	name := googleUser.Name
	if name == "" {
		name = googleUser.Email
	}
	if len(name) > 50 {
		name = name[:50]
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        googleUser.Email,
		PasswordHash: "",
		CreatedAt:    time.Now(),
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
