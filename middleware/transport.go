package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// SessionSource supplies the bearer credentials. *goSession.Controller
// implements it.
type SessionSource interface {
	Session() (goSession.Session, bool)
	Refresh(ctx context.Context) (goSession.Session, error)
}

var _ SessionSource = (*goSession.Controller)(nil)

type transport struct {
	next   http.RoundTripper
	source SessionSource
}

// Authorize returns middleware that sends requests with the current access
// token. A 401 answer triggers one refresh and one replay of the request;
// requests whose body cannot be replayed are returned as answered.
// Requests made while signed out fail with goSession.ErrNoSession.
func Authorize(source SessionSource) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		return &transport{next: next, source: source}
	}
}

// NewClient returns a client whose transport is base wrapped by [Authorize].
// A nil base uses http.DefaultTransport.
func NewClient(source SessionSource, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: Authorize(source)(base)}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil {
		return nil, goSession.ErrNoSession
	}
	sess, ok := t.source.Session()
	if !ok || sess.AccessToken == "" {
		return nil, goSession.ErrNoSession
	}

	resp, err := t.next.RoundTrip(withBearer(req, sess.AccessToken))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	retry, ok := rewind(req)
	if !ok {
		return resp, nil
	}

	renewed, rerr := t.source.Refresh(req.Context())
	if rerr != nil || renewed.AccessToken == "" || renewed.AccessToken == sess.AccessToken {
		return resp, nil
	}

	drain(resp)
	return t.next.RoundTrip(withBearer(retry, renewed.AccessToken))
}

// withBearer clones req with the Authorization header set. RoundTrippers must
// not modify the caller's request.
func withBearer(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	return out
}

// rewind returns a copy of req with a fresh body for a replay.
func rewind(req *http.Request) (*http.Request, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	out := req.Clone(req.Context())
	out.Body = body
	return out, true
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// IsNoSession reports whether err came from a request made while signed out.
// http.Client wraps transport errors in *url.Error; errors.Is unwraps it.
func IsNoSession(err error) bool {
	return errors.Is(err, goSession.ErrNoSession)
}
