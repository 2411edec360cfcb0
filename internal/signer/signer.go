// Package signer produces and verifies detached Ed25519 signatures over a
// VerificationResult's canonical payload (spec.md §4.5).
package signer

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/Noah-Everett/phiacta-verify/internal/logging"
	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// Signer signs and verifies VerificationResult records using a single
// Ed25519 key pair.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// Load builds a Signer from the PEM-encoded PKCS#8 private key at path, if
// it exists, otherwise generates an ephemeral key pair and warns — the
// ephemeral path is development-only, never for production use.
func Load(path string) (*Signer, error) {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			priv, err := parsePKCS8Ed25519(data)
			if err != nil {
				return nil, fmt.Errorf("parse signing key %s: %w", path, err)
			}
			return &Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
		}
	}

	logging.L().Warn("no signing key found, generating ephemeral key (dev mode only)")
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral signing key: %w", err)
	}
	return &Signer{priv: priv, pub: pub}, nil
}

func parsePKCS8Ed25519(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is not Ed25519")
	}
	return priv, nil
}

// Save persists the private key to path in PKCS#8 PEM format.
func (s *Signer) Save(path string) error {
	der, err := x509.MarshalPKCS8PrivateKey(s.priv)
	if err != nil {
		return err
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}

// PublicKeyPEM returns the public key in PEM/SubjectPublicKeyInfo format.
func (s *Signer) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(s.pub)
	if err != nil {
		return "", err
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// canonicalFields is the JSON-serializable subset of a VerificationResult
// that the signature covers. Field order in the struct is irrelevant; the
// JSON marshaling below always sorts keys and strips whitespace.
type canonicalFields struct {
	JobID         string `json:"job_id"`
	ClaimID       string `json:"claim_id"`
	CodeHash      string `json:"code_hash"`
	Level         string `json:"verification_level"`
	Passed        bool   `json:"passed"`
	ExecutionTime float64 `json:"execution_time_seconds"`
	CreatedAt     string `json:"created_at"`
}

// CanonicalPayload produces the deterministic JSON byte string that a
// result's signature is computed over: sorted keys, no whitespace, UTF-8.
func CanonicalPayload(r *model.VerificationResult) ([]byte, error) {
	fields := canonicalFields{
		JobID:         r.JobID.String(),
		ClaimID:       r.ClaimID.String(),
		CodeHash:      r.CodeHash,
		Level:         string(r.Level),
		Passed:        r.Passed,
		ExecutionTime: r.ExecutionTimeS,
		CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05.000000-07:00"),
	}
	// encoding/json sorts map keys lexicographically when marshaling, so
	// round-tripping the fixed-field struct through a map gives the
	// sorted-keys, no-whitespace canonical form regardless of struct
	// declaration order.
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	return json.Marshal(asMap)
}

// Sign computes the Ed25519 signature over r's canonical payload and
// returns it base64-encoded.
func (s *Signer) Sign(r *model.VerificationResult) (string, error) {
	payload, err := CanonicalPayload(r)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(s.priv, payload)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify recomputes r's canonical payload and checks signature against it.
func (s *Signer) Verify(r *model.VerificationResult, signature string) bool {
	payload, err := CanonicalPayload(r)
	if err != nil {
		return false
	}
	sigBytes, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(s.pub, payload, sigBytes)
}
