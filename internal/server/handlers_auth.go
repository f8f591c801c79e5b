package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
	"github.com/bobmcallan/holdings/internal/services/summary"
)

const (
	tokenIssuer       = "holdings-server"
	minPasswordLength = 8
)

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.InternalUser, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.UserID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iss":   tokenIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// hashPassword bcrypts a password. bcrypt only reads the first 72 bytes.
func hashPassword(password string) (string, error) {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes) == nil
}

// userResponse builds a safe response from InternalUser + UserKV entries.
func userResponse(user *models.InternalUser, kvs []*models.UserKeyValue) map[string]interface{} {
	settings := map[string]string{}
	for _, kv := range kvs {
		settings[kv.Key] = kv.Value
	}
	return map[string]interface{}{
		"user_id":    user.UserID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"settings":   settings,
		"created_at": user.CreatedAt,
	}
}

// handleAuthRegister handles POST /api/auth/register.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "a valid email is required", "email")
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		WriteErrorWithCode(w, http.StatusConflict, "email already registered", "conflict")
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		s.writeServiceError(w, err, "register user")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	now := time.Now()
	user := &models.InternalUser{
		UserID:       uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.writeServiceError(w, err, "register user")
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for registration")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.logger.Info().Str("user_id", user.UserID).Msg("User registered")

	WriteData(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  userResponse(user, nil),
	})
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	user, err := store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	kvs, _ := store.ListUserKV(ctx, user.UserID)

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userResponse(user, kvs),
	})
}

// handleUserMe handles GET /api/users/me. Requires a bearer token.
func (s *Server) handleUserMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	store := s.app.Storage.InternalStore()
	user, err := store.GetUser(r.Context(), uc.UserID)
	if err != nil {
		s.writeServiceError(w, err, "load user")
		return
	}
	kvs, _ := store.ListUserKV(r.Context(), uc.UserID)

	WriteData(w, http.StatusOK, userResponse(user, kvs))
}

// handleUserSettings handles PUT /api/users/me/settings. Only display_currency is accepted.
func (s *Server) handleUserSettings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut, http.MethodPatch) {
		return
	}

	var req struct {
		DisplayCurrency string `json:"display_currency"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.DisplayCurrency))
	if !common.IsKnownCurrency(currency) {
		WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("unknown currency %q", req.DisplayCurrency), "display_currency")
		return
	}

	userID := common.ResolveUserID(r.Context())
	store := s.app.Storage.InternalStore()
	if err := store.SetUserKV(r.Context(), userID, summary.DisplayCurrencyKey, currency); err != nil {
		s.writeServiceError(w, err, "save settings")
		return
	}

	kvs, _ := store.ListUserKV(r.Context(), userID)
	settings := map[string]string{}
	for _, kv := range kvs {
		settings[kv.Key] = kv.Value
	}
	WriteData(w, http.StatusOK, settings)
}
