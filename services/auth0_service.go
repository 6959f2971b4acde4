package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	appConfig "github.com/nageshcare/nageshcare-api/config"
)

// StaffProfile is the subset of the identity provider's /userinfo response
// used to label replies
type StaffProfile struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Label is the string recorded as replied_by: email, else name, else subject
func (p *StaffProfile) Label() string {
	switch {
	case p.Email != "":
		return p.Email
	case p.Name != "":
		return p.Name
	default:
		return p.Sub
	}
}

// Auth0Service looks up staff profiles from the Auth0 /userinfo endpoint.
// Profiles are cached per subject for the life of the process.
type Auth0Service struct {
	domain     string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]StaffProfile
}

// NewAuth0Service creates an Auth0 client for cfg.Auth0Domain
func NewAuth0Service(cfg *appConfig.Config) *Auth0Service {
	return &Auth0Service{
		domain: cfg.Auth0Domain,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: map[string]StaffProfile{},
	}
}

func (s *Auth0Service) userInfoURL() string {
	// a domain with a scheme points at a test server
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		return strings.TrimRight(s.domain, "/") + "/userinfo"
	}
	return fmt.Sprintf("https://%s/userinfo", s.domain)
}

// Profile returns the profile of the token's subject, calling /userinfo on
// the first lookup of each subject
func (s *Auth0Service) Profile(ctx context.Context, sub, accessToken string) (*StaffProfile, error) {
	s.mu.RLock()
	cached, ok := s.cache[sub]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var profile StaffProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if profile.Sub == "" {
		profile.Sub = sub
	}

	s.mu.Lock()
	s.cache[sub] = profile
	s.mu.Unlock()
	return &profile, nil
}
