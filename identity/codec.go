package identity

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrCacheCorrupt is returned when a cached identity blob cannot be used.
var ErrCacheCorrupt = errors.New("cached identity corrupt")

// EncodeCache renders i as the JSON blob kept in the token store.
func EncodeCache(i Identity) (string, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeCache parses a cached identity blob. Blobs that do not decode, or that
// carry neither an id nor an email, are rejected with [ErrCacheCorrupt].
func DecodeCache(blob string) (Identity, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" || blob == "null" {
		return Identity{}, ErrCacheCorrupt
	}
	var out Identity
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return Identity{}, ErrCacheCorrupt
	}
	if out.Empty() {
		return Identity{}, ErrCacheCorrupt
	}
	if out.Role != "" && !out.Role.Valid() {
		out.Role = ""
	}
	if out.ManualVerificationStatus != "" && !out.ManualVerificationStatus.Valid() {
		out.ManualVerificationStatus = ""
	}
	return out, nil
}
