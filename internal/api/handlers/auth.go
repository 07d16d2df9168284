// HTTP handler for the token exchange endpoint (public — no AuthMiddleware).
// Verifies the presented API key against the configured bcrypt hash and
// issues a Bearer JWT for the /ai/* routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgauth "github.com/codevakure/bedrock-api-code/pkg/auth"
)

// AuthHandler handles POST /auth/token.
type AuthHandler struct {
	apiKeyHash string
}

// NewAuthHandler creates an AuthHandler checking keys against the given
// bcrypt hash. An empty hash disables the endpoint.
func NewAuthHandler(apiKeyHash string) *AuthHandler {
	return &AuthHandler{apiKeyHash: apiKeyHash}
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
}

// TokenResponse is the response body returned after a successful exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token handles POST /auth/token.
//
// Response codes:
//   - 200 OK: exchange successful
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 401 Unauthorized: wrong API key (generic message, no detail)
//   - 503 Service Unavailable: no API key hash configured
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if h.apiKeyHash == "" {
		writeError(w, http.StatusServiceUnavailable, "token endpoint is not configured")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateTokenRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !pkgauth.VerifyAPIKey(h.apiKeyHash, req.APIKey) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := pkgauth.GenerateJWT(req.ClientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// validateTokenRequest checks required fields for the token endpoint.
func validateTokenRequest(req TokenRequest) error {
	if req.ClientID == "" {
		return errors.New("client_id is required")
	}
	if req.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}
