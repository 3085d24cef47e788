// Package gatewaytest provides an in-process fake of the session backend for
// tests and demos. It implements every endpoint the gateway calls, mints real
// JWT access tokens, rotates opaque refresh tokens, and counts calls per
// endpoint.
package gatewaytest

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/jwt"
)

// Endpoint names used by Calls and FailWith.
const (
	EndpointLogin           = "login"
	EndpointRegister        = "register"
	EndpointRefresh         = "refresh"
	EndpointLogout          = "logout"
	EndpointMe              = "me"
	EndpointExternalProfile = "external_profile"
	EndpointTenantDashboard = "tenant_dashboard"
)

// User is an account known to the fake backend.
type User struct {
	Password string
	Payload  gateway.UserPayload

	// External is returned by the external profile check. Nil answers with no
	// external profile.
	External *gateway.ExternalProfile
	// Platform is returned by the tenant dashboard. Nil answers 404.
	Platform *gateway.PlatformDashboard
}

// Server is the fake backend.
type Server struct {
	echo   *echo.Echo
	paths  gateway.Paths
	signer *jwt.Signer
	dec    *jwt.Decoder

	mu           sync.Mutex
	now          func() time.Time
	accessTTL    time.Duration
	refreshDelay time.Duration
	rotate       bool
	users        map[string]*User
	refresh      map[string]string
	access       map[string]string
	failures     map[string]int
	calls        map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithAccessTTL sets the lifetime of minted access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithClock sets the clock used for minting and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRefreshDelay makes the refresh endpoint stall before answering.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Server) { s.refreshDelay = d }
}

// WithoutRotation keeps refresh tokens stable across refreshes.
func WithoutRotation() Option {
	return func(s *Server) { s.rotate = false }
}

// New returns a fake backend serving gateway.DefaultPaths.
func New(opts ...Option) *Server {
	signer, err := jwt.NewSigner(jwt.SignerConfig{
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("gatewaytest-signing-key"),
		Issuer:        "gatewaytest",
	})
	if err != nil {
		panic(err)
	}

	s := &Server{
		echo:      echo.New(),
		paths:     gateway.DefaultPaths(),
		signer:    signer,
		dec:       jwt.NewDecoder(),
		now:       time.Now,
		accessTTL: 15 * time.Minute,
		rotate:    true,
		users:     make(map[string]*User),
		refresh:   make(map[string]string),
		access:    make(map[string]string),
		failures:  make(map[string]int),
		calls:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

// Handler returns the HTTP handler, ready for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// AddUser registers an account keyed by its email.
func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[strings.ToLower(u.Payload.Email)] = &cp
}

// UpdateUser mutates an existing account in place.
func (s *Server) UpdateUser(email string, fn func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[strings.ToLower(email)]; ok {
		fn(u)
	}
}

// FailWith makes every call to endpoint answer status until cleared with 0.
func (s *Server) FailWith(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, endpoint)
		return
	}
	s.failures[endpoint] = status
}

// Calls returns how many requests endpoint received.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// IssueSSO mints the payload an external sign-in would hand to the client.
func (s *Server) IssueSSO(email string) (*gateway.AuthResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	resp, err := s.issueLocked(u)
	if err != nil {
		return nil, false
	}
	return resp, true
}

// RevokeRefreshTokens invalidates every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

// RevokeAccessTokens invalidates every outstanding access token. Refresh
// tokens stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

func (s *Server) routes() {
	s.echo.POST(s.paths.Login, s.handleLogin)
	s.echo.POST(s.paths.Register, s.handleRegister)
	s.echo.POST(s.paths.Refresh, s.handleRefresh)
	s.echo.POST(s.paths.Logout, s.handleLogout)
	s.echo.GET(s.paths.Me, s.handleMe)
	s.echo.GET(s.paths.ExternalProfile, s.handleExternalProfile)
	s.echo.GET(s.paths.TenantDashboard, s.handleTenantDashboard)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Message: msg})
}

// begin counts the call and reports a forced failure status, if any.
func (s *Server) begin(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[endpoint]++
	return s.failures[endpoint]
}

func (s *Server) issueLocked(u *User) (*gateway.AuthResponse, error) {
	access, err := s.signer.Sign(u.Payload.ID, u.Payload.Email, u.Payload.Role, s.now(), s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	s.access[access] = strings.ToLower(u.Payload.Email)
	s.refresh[refresh] = strings.ToLower(u.Payload.Email)
	return &gateway.AuthResponse{AccessToken: access, RefreshToken: refresh, User: u.Payload}, nil
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// userForAccess resolves a live access token to its account.
func (s *Server) userForAccess(c echo.Context) (*User, bool) {
	token := bearer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.access[token]
	if !ok {
		return nil, false
	}
	if exp, known := s.dec.ExpiresAt(token); known && !s.now().Before(exp) {
		return nil, false
	}
	u, ok := s.users[email]
	return u, ok
}

func (s *Server) handleLogin(c echo.Context) error {
	if status := s.begin(EndpointLogin); status != 0 {
		return fail(c, status, "login unavailable")
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[strings.ToLower(req.Email)]
	if !found || u.Password != req.Password {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	resp, err := s.issueLocked(u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, resp)
}

func (s *Server) handleRegister(c echo.Context) error {
	if status := s.begin(EndpointRegister); status != 0 {
		return fail(c, status, "registration unavailable")
	}
	var req gateway.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request")
	}
	if req.Email == "" || len(req.Password) < 8 {
		return fail(c, http.StatusUnprocessableEntity, "Email and a password of at least 8 characters are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.users[key]; exists {
		return fail(c, http.StatusConflict, "An account with this email already exists")
	}
	u := &User{
		Password: req.Password,
		Payload: gateway.UserPayload{
			ID:        uuid.NewString(),
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      req.Role,
			Phone:     req.Phone,
		},
	}
	s.users[key] = u
	resp, err := s.issueLocked(u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, resp)
}

func (s *Server) handleRefresh(c echo.Context) error {
	if status := s.begin(EndpointRefresh); status != 0 {
		return fail(c, status, "refresh unavailable")
	}
	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	token := bearer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	email, found := s.refresh[token]
	if !found {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token")
	}
	u := s.users[email]
	access, err := s.signer.Sign(u.Payload.ID, u.Payload.Email, u.Payload.Role, s.now(), s.accessTTL)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	s.access[access] = email

	pair := gateway.TokenPair{AccessToken: access}
	if s.rotate {
		delete(s.refresh, token)
		pair.RefreshToken = uuid.NewString()
		s.refresh[pair.RefreshToken] = email
	}
	return ok(c, pair)
}

func (s *Server) handleLogout(c echo.Context) error {
	if status := s.begin(EndpointLogout); status != 0 {
		return fail(c, status, "logout unavailable")
	}
	token := bearer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	email, found := s.access[token]
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	for k, v := range s.access {
		if v == email {
			delete(s.access, k)
		}
	}
	for k, v := range s.refresh {
		if v == email {
			delete(s.refresh, k)
		}
	}
	return ok(c, map[string]bool{"logged_out": true})
}

func (s *Server) handleMe(c echo.Context) error {
	if status := s.begin(EndpointMe); status != 0 {
		return fail(c, status, "identity unavailable")
	}
	u, found := s.userForAccess(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, map[string]gateway.UserPayload{"user": u.Payload})
}

func (s *Server) handleExternalProfile(c echo.Context) error {
	if status := s.begin(EndpointExternalProfile); status != 0 {
		return fail(c, status, "external profile unavailable")
	}
	u, found := s.userForAccess(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.External == nil {
		return ok(c, gateway.ExternalProfile{})
	}
	return ok(c, *u.External)
}

func (s *Server) handleTenantDashboard(c echo.Context) error {
	if status := s.begin(EndpointTenantDashboard); status != 0 {
		return fail(c, status, "dashboard unavailable")
	}
	u, found := s.userForAccess(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Platform == nil {
		return fail(c, http.StatusNotFound, "No tenancy found")
	}
	return ok(c, *u.Platform)
}
