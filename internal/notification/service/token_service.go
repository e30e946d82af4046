package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"shopit-admin/internal/config"
	apperrors "shopit-admin/internal/errors"
)

const (
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL   = time.Hour
)

// TokenService exchanges the long-lived service credential for a short-lived
// bearer token scoped to push-messaging send. Every call performs a fresh
// exchange; callers that want caching must respect the provider's expiry.
type TokenService struct {
	account    config.ServiceAccount
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTokenService(account config.ServiceAccount, httpClient *http.Client, logger *zap.Logger) *TokenService {
	return &TokenService{
		account:    account,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *TokenService) AccessToken(ctx context.Context) (string, error) {
	assertion, err := s.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewAuthError(fmt.Sprintf("token exchange failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewAuthError(fmt.Sprintf("reading token response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("token endpoint rejected exchange",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", apperrors.NewAuthError(fmt.Sprintf("token exchange returned status %d", resp.StatusCode))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperrors.NewAuthError(fmt.Sprintf("parsing token response: %v", err))
	}

	if payload.AccessToken == "" {
		return "", apperrors.NewAuthError("unable to fetch push access token")
	}

	return payload.AccessToken, nil
}

func (s *TokenService) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.account.PrivateKey))
	if err != nil {
		return "", apperrors.NewInternalError("parsing service account private key", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": messagingScope,
		"aud":   s.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", apperrors.NewInternalError("signing token assertion", err)
	}

	return assertion, nil
}
