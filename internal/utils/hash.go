package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sync"
)

// hasherPool holds reusable HMAC-SHA256 instances. It must be initialised
// with InitHasherPool before Hash is called.
var hasherPool sync.Pool

// InitHasherPool configures the package-level pool so every hasher it hands
// out is keyed with hashKey. Both the client adapter and the server call it
// once at start-up with the shared integrity key.
func InitHasherPool(hashKey string) {
	hasherPool = sync.Pool{
		New: func() any {
			return hmac.New(sha256.New, []byte(hashKey))
		},
	}
}

// Hash computes an HMAC-SHA256 digest of data with a pooled hasher.
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// HashJSON encodes v as JSON and returns the hex digest of the encoding.
// Used for record integrity hashes on whole-document writes.
func HashJSON(v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value for hashing: %w", err)
	}
	return hex.EncodeToString(Hash(payload)), nil
}

// HashString returns the hex HMAC-SHA256 of data under hashKey without going
// through the pool.
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}
