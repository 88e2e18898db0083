package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Profile is the identity a provider vouches for after a successful exchange.
type Profile struct {
	Provider  string
	AccountID string
	Name      string
	Email     *string
	Image     *string
}

// OAuthProvider runs the authorization code flow against one identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

type oauthProvider struct {
	name       string
	config     *oauth2.Config
	profileURL string
	parse      func(body []byte) (*Profile, error)
}

// NewGitHubProvider returns a provider backed by GitHub's OAuth apps.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) OAuthProvider {
	return &oauthProvider{
		name: "github",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		profileURL: "https://api.github.com/user",
		parse:      parseGitHubProfile,
	}
}

// NewGoogleProvider returns a provider backed by Google's OpenID Connect userinfo endpoint.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) OAuthProvider {
	return &oauthProvider{
		name: "google",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		profileURL: "https://openidconnect.googleapis.com/v1/userinfo",
		parse:      parseGoogleProfile,
	}
}

func (p *oauthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchanging code: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetching profile: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: reading profile: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: profile endpoint returned %d", p.name, resp.StatusCode)
	}

	profile, err := p.parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	profile.Provider = p.name
	return profile, nil
}

func parseGitHubProfile(body []byte) (*Profile, error) {
	var u struct {
		ID        int64   `json:"id"`
		Login     string  `json:"login"`
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if u.ID == 0 {
		return nil, errors.New("profile has no id")
	}
	name := u.Login
	if u.Name != nil && *u.Name != "" {
		name = *u.Name
	}
	return &Profile{
		AccountID: strconv.FormatInt(u.ID, 10),
		Name:      name,
		Email:     nonEmpty(u.Email),
		Image:     nonEmpty(u.AvatarURL),
	}, nil
}

func parseGoogleProfile(body []byte) (*Profile, error) {
	var u struct {
		Sub           string  `json:"sub"`
		Name          string  `json:"name"`
		Email         *string `json:"email"`
		EmailVerified bool    `json:"email_verified"`
		Picture       *string `json:"picture"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if u.Sub == "" {
		return nil, errors.New("profile has no subject")
	}
	p := &Profile{AccountID: u.Sub, Name: u.Name, Image: nonEmpty(u.Picture)}
	// Unverified addresses must not be used to link existing accounts.
	if u.EmailVerified {
		p.Email = nonEmpty(u.Email)
	}
	if p.Name == "" && p.Email != nil {
		p.Name = *p.Email
	}
	return p, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
