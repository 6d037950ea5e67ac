package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// ErrInvalidCredentials is returned when the provider rejects an email and
// password pair or a refresh token.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

var ErrEmailExists = fmt.Errorf("email already exists")

// FirebaseAuthClient combines the Admin SDK (user management, token
// verification) with the REST sign-in endpoints the SDK does not cover.
type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client

	identityURL string
	tokenURL    string
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:      client,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		identityURL: identityToolkitURL,
		tokenURL:    secureTokenURL,
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return user.UID, nil
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

// VerifyToken checks the ID token signature and revocation state.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return "", err
	}
	return result.UID, nil
}

func (f *FirebaseAuthClient) RevokeTokens(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges an email and password for an ID token and refresh token.
// It returns uid, idToken and refreshToken.
func (f *FirebaseAuthClient) SignIn(ctx context.Context, email, password string) (string, string, string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.identityURL+"/accounts:signInWithPassword?key="+url.QueryEscape(f.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out signInResponse
	if err := f.do(req, &out); err != nil {
		return "", "", "", err
	}
	return out.LocalID, out.IDToken, out.RefreshToken, nil
}

// Refresh trades a refresh token for a new token pair. It returns uid,
// idToken and refreshToken.
func (f *FirebaseAuthClient) Refresh(ctx context.Context, refreshToken string) (string, string, string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.tokenURL+"/token?key="+url.QueryEscape(f.apiKey), strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := f.do(req, &out); err != nil {
		return "", "", "", err
	}
	return out.UserID, out.IDToken, out.RefreshToken, nil
}

func (f *FirebaseAuthClient) do(req *http.Request, out interface{}) error {
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firebase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr restError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		switch {
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Error.Message)
		default:
			return fmt.Errorf("firebase returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
