package signature

// Envelope is a detached signature over the canonical JSON hash of a
// payload. PublicKey and Signature are std base64; PayloadHash is
// lowercase hex of the SHA-256 payload digest.
type Envelope struct {
	Version     string `json:"version"`
	Algorithm   string `json:"algorithm"`
	PublicKey   string `json:"public_key"`
	Signature   string `json:"signature"`
	PayloadHash string `json:"payload_hash"`
	IssuedAt    string `json:"issued_at"`
	KeyID       string `json:"key_id,omitempty"`
	Context     string `json:"context,omitempty"`
}
