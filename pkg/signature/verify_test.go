package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestVerify_Ed25519HappyPath(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	payload := map[string]any{
		"b": "two",
		"a": 1,
	}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := Verify(payload, env)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !got.IssuedAt.Equal(got.IssuedAt.UTC()) {
		t.Fatalf("expected UTC issuedAt")
	}
}

func TestVerify_IssuedAtRequiredOrInvalid(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"a": 1}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	env.IssuedAt = ""
	if _, err := Verify(payload, env); !errors.Is(err, ErrInvalidIssuedAt) {
		t.Fatalf("expected ErrInvalidIssuedAt for empty, got %v", err)
	}

	env.IssuedAt = "2026-02-18T12:00:00+00:00"
	if _, err := Verify(payload, env); !errors.Is(err, ErrInvalidIssuedAt) {
		t.Fatalf("expected ErrInvalidIssuedAt for non-Z UTC format, got %v", err)
	}
}

func TestVerify_PayloadHashMismatch(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"a": 1}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	env.PayloadHash = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	if _, err := Verify(payload, env); !errors.Is(err, ErrPayloadHashMismatch) {
		t.Fatalf("expected ErrPayloadHashMismatch, got %v", err)
	}
}

func TestVerify_TamperedPayloadFails(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"token_id": 7, "operator": "op"}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tampered := map[string]any{"token_id": 8, "operator": "op"}
	if _, err := Verify(tampered, env); !errors.Is(err, ErrPayloadHashMismatch) {
		t.Fatalf("expected ErrPayloadHashMismatch for tampered payload, got %v", err)
	}
}

func TestVerify_WrongKeyFails(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	otherPub, _, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"a": 1}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	env.PublicKey = base64.StdEncoding.EncodeToString(otherPub)
	if _, err := Verify(payload, env); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_UnsupportedVersionOrAlgorithm(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"a": 1}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	bad := env
	bad.Version = "sig-v9"
	if _, err := Verify(payload, bad); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm for version, got %v", err)
	}

	bad = env
	bad.Algorithm = "es256"
	if _, err := Verify(payload, bad); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm for algorithm, got %v", err)
	}
}

func TestVerify_MalformedEncodings(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	payload := map[string]any{"a": 1}
	env, err := Sign(payload, priv, time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	bad := env
	bad.PayloadHash = "NOTHEX"
	if _, err := Verify(payload, bad); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for hash, got %v", err)
	}

	bad = env
	bad.Signature = "!!!"
	if _, err := Verify(payload, bad); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for signature, got %v", err)
	}

	bad = env
	bad.PublicKey = base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := Verify(payload, bad); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for key size, got %v", err)
	}
}
