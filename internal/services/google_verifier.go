package services

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// googleCertsURL serves Google's current OAuth2 signing certificates as a
// JSON map of key ID to PEM certificate.
const googleCertsURL = "https://www.googleapis.com/oauth2/v1/certs"

// GoogleClaims are the identity fields extracted from a verified ID token.
type GoogleClaims struct {
	Email   string
	Name    string
	Picture string
}

// TokenVerifier verifies an OAuth ID token and returns its identity claims.
type TokenVerifier interface {
	Verify(idToken string) (*GoogleClaims, error)
}

// GoogleVerifier verifies Google-issued ID tokens: RS256 signature against
// Google's published certificates, audience, and issuer. Certificates are
// cached and refetched hourly or on an unknown key ID.
type GoogleVerifier struct {
	clientID   string
	httpClient *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewGoogleVerifier creates a verifier for tokens minted for clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify parses and validates idToken, returning its identity claims.
func (v *GoogleVerifier) Verify(idToken string) (*GoogleClaims, error) {
	token, err := jwt.Parse(idToken, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("invalid ID token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid ID token")
	}

	if aud, _ := claims["aud"].(string); aud != v.clientID {
		return nil, fmt.Errorf("ID token audience mismatch")
	}
	iss, _ := claims["iss"].(string)
	if iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return nil, fmt.Errorf("ID token issuer %q not accepted", iss)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("ID token has no email claim")
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &GoogleClaims{Email: email, Name: name, Picture: picture}, nil
}

// keyFunc resolves the RSA public key for the token's kid header.
func (v *GoogleVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("ID token has no kid header")
	}

	key, err := v.lookupKey(kid, false)
	if err != nil {
		// Google rotates keys; force one refetch before giving up.
		key, err = v.lookupKey(kid, true)
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (v *GoogleVerifier) lookupKey(kid string, forceRefresh bool) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	stale := v.keys == nil || time.Since(v.fetchedAt) > time.Hour
	if stale || forceRefresh {
		keys, err := v.fetchKeys()
		if err != nil {
			return nil, err
		}
		v.keys = keys
		v.fetchedAt = time.Now()
	}

	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no Google certificate for key ID %s", kid)
	}
	return key, nil
}

func (v *GoogleVerifier) fetchKeys() (map[string]*rsa.PublicKey, error) {
	resp, err := v.httpClient.Get(googleCertsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google certificates endpoint returned %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return nil, fmt.Errorf("failed to decode Google certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("failed to parse Google certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}
	return keys, nil
}
