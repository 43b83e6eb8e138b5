package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const sessionTTL = 24 * time.Hour

type AuthHandler struct {
	oauthConfig   *oauth2.Config
	users         ports.UserService
	jwtSecret     []byte
	frontendURL   string
	allowedEmails []string
	isProduction  bool
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, users ports.UserService) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		users:         users,
		jwtSecret:     []byte(cfg.JWTSecret),
		frontendURL:   cfg.FrontendURL,
		allowedEmails: cfg.AllowedEmails,
		isProduction:  cfg.IsProduction(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		logger.Warn().Err(err).Msg("oauth callback without state cookie")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		logger.Warn().Msg("oauth callback with mismatched state")
		http.Error(w, "invalid oauth google state", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := h.oauthConfig.Exchange(ctx, r.FormValue("code"))
	if err != nil {
		logger.Error().Err(err).Msg("oauth code exchange failed")
		http.Error(w, "code exchange failed", http.StatusInternalServerError)
		return
	}

	googleUser, err := h.fetchGoogleUser(ctx, token)
	if err != nil {
		logger.Error().Err(err).Msg("failed getting google user info")
		http.Error(w, "failed getting user info", http.StatusInternalServerError)
		return
	}

	if !googleUser.VerifiedEmail || !h.emailAllowed(googleUser.Email) {
		logger.Warn().Str("email", googleUser.Email).Msg("login rejected")
		http.Error(w, "Access denied: your email is not allowed", http.StatusForbidden)
		return
	}

	user, err := h.users.Login(ctx, googleUser.Email, googleUser.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tokenString, expiresAt, err := IssueToken(h.jwtSecret, user, sessionTTL)
	if err != nil {
		logger.Error().Err(err).Msg("failed signing JWT")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    tokenString,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("login successful")
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := h.oauthConfig.Client(ctx, token)
	response, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		return nil, err
	}
	return &googleUser, nil
}

func (h *AuthHandler) emailAllowed(email string) bool {
	if len(h.allowedEmails) == 0 {
		return true
	}
	for _, allowed := range h.allowedEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
