// Package identity exchanges OAuth authorization codes for user profiles.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/axellelanca/linkshelf/internal/config"
	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

// Profile is what the provider tells us about the person logging in.
type Profile struct {
	Nickname string
	Email    string
}

// kakaoUser mirrors the fields we read from the user info endpoint.
type kakaoUser struct {
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
	Account struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

// KakaoProvider implements the authorization-code flow against Kakao-style
// endpoints. All urls come from configuration so a test server can stand in.
type KakaoProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	logoutURL   string
	logoutTo    string
	httpClient  *http.Client
}

// NewKakaoProvider creates a provider from configuration. httpClient may be nil.
func NewKakaoProvider(cfg config.OAuth, httpClient *http.Client) *KakaoProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &KakaoProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		logoutURL:   cfg.LogoutURL,
		logoutTo:    cfg.LogoutRedirectURL,
		httpClient:  httpClient,
	}
}

// AuthCodeURL is where the browser is sent to log in.
func (p *KakaoProvider) AuthCodeURL() string {
	return p.oauth.AuthCodeURL("")
}

// LogoutURL is where the browser is sent to end the provider session.
func (p *KakaoProvider) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", p.oauth.ClientID)
	q.Set("logout_redirect_uri", p.logoutTo)
	return p.logoutURL + "?" + q.Encode()
}

// Exchange trades an authorization code for the caller's profile. A code the
// provider rejects yields ErrUnauthorized; transport failures yield
// ErrUnavailable.
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Profile{}, fmt.Errorf("%w: code rejected by provider: %v", apperrors.ErrUnauthorized, err)
		}
		return Profile{}, apperrors.Unavailable("token exchange", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build user info request: %w", err)
	}
	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return Profile{}, apperrors.Unavailable("user info", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Profile{}, fmt.Errorf("%w: provider refused access token", apperrors.ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return Profile{}, apperrors.Unavailable("user info", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var user kakaoUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Profile{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if user.Account.Email == "" {
		return Profile{}, fmt.Errorf("%w: provider returned no email", apperrors.ErrUnauthorized)
	}
	return Profile{Nickname: user.Properties.Nickname, Email: user.Account.Email}, nil
}
