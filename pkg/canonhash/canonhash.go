package canonhash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SumObject hashes the canonical JSON encoding of v (json.Marshal
// bytes through SHA-256). Signing payloads and journal transaction
// hashes both go through here so every party agrees on the bytes.
func SumObject(v any) (string, []byte, error) {
	hexHash, b, err := SumHex(v)
	if err != nil {
		return "", nil, err
	}
	return "sha256:" + hexHash, b, nil
}

// SumHex is SumObject without the algorithm prefix.
func SumHex(v any) (string, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), b, nil
}
