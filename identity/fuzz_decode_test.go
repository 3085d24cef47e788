package identity

import "testing"

// FuzzDecodeCache exercises the cached identity decoder with arbitrary blobs.
// Goal: no panics, and every accepted blob carries a user reference.
func FuzzDecodeCache(f *testing.F) {
	seed, err := EncodeCache(baseIdentity())
	if err == nil {
		f.Add(seed)
	}
	f.Add("")
	f.Add("{}")
	f.Add(`{"id":1}`)
	f.Add(`{"email":"x@example.com","isActive":"yes"}`)
	if len(seed) > 10 {
		f.Add(seed[:10])
	}

	f.Fuzz(func(t *testing.T, blob string) {
		out, err := DecodeCache(blob)
		if err != nil {
			return
		}
		if out.Empty() {
			t.Fatal("decoder accepted a blob without id or email")
		}
	})
}
