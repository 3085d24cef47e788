package gateway

import (
	"encoding/json"
	"errors"
)

// ErrInvalidSSOPayload is returned when an SSO payload lacks a token or user.
var ErrInvalidSSOPayload = errors.New("invalid sso payload")

// ParseSSOPayload normalizes the payload handed over by a completed external
// sign-in. It makes no network call: the payload is the data. Both the bare
// form and the {success,data} envelope are accepted.
func ParseSSOPayload(data []byte) (*AuthResponse, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		data = env.Data
	}

	var resp AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Join(ErrInvalidSSOPayload, err)
	}
	resp.normalize()
	if err := ValidateAuthResponse(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateAuthResponse checks that resp can start a session.
func ValidateAuthResponse(resp *AuthResponse) error {
	if resp == nil {
		return ErrInvalidSSOPayload
	}
	resp.normalize()
	if resp.AccessToken == "" {
		return errors.Join(ErrInvalidSSOPayload, errors.New("missing access token"))
	}
	if resp.User.ID == "" && resp.User.Email == "" {
		return errors.Join(ErrInvalidSSOPayload, errors.New("missing user"))
	}
	return nil
}
