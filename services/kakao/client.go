package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthkakao "golang.org/x/oauth2/kakao"

	"moodflix/models"
)

const defaultProfileURL = "https://kapi.kakao.com/v2/user/me"

// Client talks to the Kakao OAuth and profile endpoints. The app key acts as
// the OAuth client ID; Kakao's token endpoint takes it as a form parameter,
// not basic auth.
type Client struct {
	conf       *oauth2.Config
	httpClient *http.Client
	profileURL string
}

// NewClient creates a Kakao client for the given app key and redirect URL.
// Pass a nil httpClient to use a default with a 10s timeout.
func NewClient(appKey, redirectURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := oauthkakao.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &Client{
		conf: &oauth2.Config{
			ClientID:    appKey,
			RedirectURL: redirectURL,
			Endpoint:    endpoint,
		},
		httpClient: httpClient,
		profileURL: defaultProfileURL,
	}
}

// AuthURL returns the authorization URL the UI sends the user to.
func (c *Client) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// ExchangeCode swaps an authorization code for Kakao tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao token exchange: %w", err)
	}
	return token, nil
}

// Profile fetches and normalizes the Kakao user profile for a token.
func (c *Client) Profile(ctx context.Context, accessToken string) (*models.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("kakao profile failed: %s - %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return profile.normalize(), nil
}

// profileResponse is Kakao's /v2/user/me shape, reduced to what we consume.
type profileResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (p profileResponse) normalize() *models.UserInfo {
	name := p.KakaoAccount.Profile.Nickname
	if name == "" {
		name = "Kakao user"
	}
	return &models.UserInfo{
		ID:           strconv.FormatInt(p.ID, 10),
		Name:         name,
		Email:        p.KakaoAccount.Email,
		ProfileImage: p.KakaoAccount.Profile.ProfileImageURL,
	}
}
