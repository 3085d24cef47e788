package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

// Paths are the endpoint paths, relative to Config.BaseURL.
type Paths struct {
	Login           string
	Register        string
	Refresh         string
	Logout          string
	Me              string
	ExternalProfile string
	TenantDashboard string
}

// DefaultPaths returns the backend's endpoint layout.
func DefaultPaths() Paths {
	return Paths{
		Login:           "/api/auth/login",
		Register:        "/api/auth/register",
		Refresh:         "/api/auth/refresh",
		Logout:          "/api/auth/logout",
		Me:              "/api/auth/me",
		ExternalProfile: "/api/external-tenant/profile",
		TenantDashboard: "/api/tenant/dashboard",
	}
}

// Config configures an HTTPGateway.
type Config struct {
	BaseURL   string
	Paths     Paths
	UserAgent string
	// Timeout bounds each call. Zero leaves calls bounded only by their context.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPGateway talks to the backend over JSON/HTTP.
type HTTPGateway struct {
	base      string
	paths     Paths
	userAgent string
	client    *http.Client
}

// NewHTTPGateway validates cfg and returns a gateway. Empty paths fall back to
// DefaultPaths.
func NewHTTPGateway(cfg Config) (*HTTPGateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway base URL required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("gateway base URL must be http(s): %q", cfg.BaseURL)
	}

	paths := fillPaths(cfg.Paths)
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "goSession"
	}

	return &HTTPGateway{base: base, paths: paths, userAgent: ua, client: client}, nil
}

func fillPaths(p Paths) Paths {
	d := DefaultPaths()
	if p.Login == "" {
		p.Login = d.Login
	}
	if p.Register == "" {
		p.Register = d.Register
	}
	if p.Refresh == "" {
		p.Refresh = d.Refresh
	}
	if p.Logout == "" {
		p.Logout = d.Logout
	}
	if p.Me == "" {
		p.Me = d.Me
	}
	if p.ExternalProfile == "" {
		p.ExternalProfile = d.ExternalProfile
	}
	if p.TenantDashboard == "" {
		p.TenantDashboard = d.TenantDashboard
	}
	return p
}

// Login exchanges credentials for a session.
func (g *HTTPGateway) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := g.do(ctx, "login", http.MethodPost, g.paths.Login, "", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if err := g.checkAuth("login", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. When the backend signs the user in, the result
// carries tokens; otherwise AccessToken is empty.
func (g *HTTPGateway) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := g.do(ctx, "register", http.MethodPost, g.paths.Register, "", req, &out); err != nil {
		return nil, err
	}
	out.normalize()
	return &out, nil
}

// Refresh exchanges the refresh token, sent as the bearer credential, for a
// new token pair.
func (g *HTTPGateway) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, &Error{Op: "refresh", Kind: KindUnauthorized, Message: "missing refresh token"}
	}
	var out TokenPair
	if err := g.do(ctx, "refresh", http.MethodPost, g.paths.Refresh, refreshToken, nil, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Op: "refresh", Kind: KindServer, Message: "refresh response without access token"}
	}
	return &out, nil
}

// Logout revokes the session server-side.
func (g *HTTPGateway) Logout(ctx context.Context, accessToken string) error {
	return g.do(ctx, "logout", http.MethodPost, g.paths.Logout, accessToken, nil, nil)
}

// FetchIdentity returns the current user. Both {"user":{...}} and a bare user
// object are accepted as data.
func (g *HTTPGateway) FetchIdentity(ctx context.Context, accessToken string) (*UserPayload, error) {
	var raw json.RawMessage
	if err := g.do(ctx, "me", http.MethodGet, g.paths.Me, accessToken, nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User *UserPayload `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var user UserPayload
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &Error{Op: "me", Kind: KindNetwork, Message: "decode user", Err: err}
	}
	if user.ID == "" && user.Email == "" {
		return nil, &Error{Op: "me", Kind: KindServer, Message: "identity response without user"}
	}
	return &user, nil
}

// CheckExternalTenantProfile reports whether the user has a self-registered
// tenancy outside the platform.
func (g *HTTPGateway) CheckExternalTenantProfile(ctx context.Context, accessToken string) (*ExternalProfile, error) {
	var out ExternalProfile
	if err := g.do(ctx, "external_profile", http.MethodGet, g.paths.ExternalProfile, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchPlatformTenantDashboard returns the platform tenancy status.
func (g *HTTPGateway) FetchPlatformTenantDashboard(ctx context.Context, accessToken string) (*PlatformDashboard, error) {
	var out PlatformDashboard
	if err := g.do(ctx, "tenant_dashboard", http.MethodGet, g.paths.TenantDashboard, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) checkAuth(op string, resp *AuthResponse) error {
	resp.normalize()
	if resp.AccessToken == "" {
		return &Error{Op: op, Kind: KindServer, Message: "auth response without access token"}
	}
	return nil
}

func (g *HTTPGateway) do(ctx context.Context, op, method, path, bearer string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindValidation, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return networkError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set(RequestIDHeader, requestIDFromContext(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return networkError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return networkError(op, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = env.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: op, Kind: KindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, Message: "decode response", Err: decodeErr}
	}
	if !env.Success {
		msg := env.message()
		if msg == "" {
			msg = "request rejected"
		}
		return &Error{Op: op, Kind: KindValidation, Status: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 {
		return &Error{Op: op, Kind: KindServer, Status: resp.StatusCode, Message: "response without data"}
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], env.Data...)
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, Message: "decode data", Err: err}
	}
	return nil
}
