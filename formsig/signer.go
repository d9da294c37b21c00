package formsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/vitalvas/mosparo/formdata"
)

// Signer computes mosparo HMAC-SHA256 signatures with a project's
// private key. A Signer is immutable and safe for concurrent use.
type Signer struct {
	publicKey  string
	privateKey []byte
}

// NewSigner creates a Signer for the given mosparo project key pair.
func NewSigner(publicKey, privateKey string) *Signer {
	return &Signer{
		publicKey:  publicKey,
		privateKey: []byte(privateKey),
	}
}

// PublicKey returns the project public key.
func (s *Signer) PublicKey() string { return s.publicKey }

// Hash returns the lowercase hex HMAC-SHA256 of message.
func (s *Signer) Hash(message string) string {
	return hex.EncodeToString(computeHMAC(s.privateKey, []byte(message)))
}

// FormSignature signs the serialized prepared form data. The value is
// prepared again, so raw form data gives the same result.
func (s *Signer) FormSignature(form formdata.Value) string {
	return s.Hash(formdata.Serialize(formdata.Prepare(form)))
}

// ValidationSignature signs the opaque validation token issued by the
// mosparo frontend.
func (s *Signer) ValidationSignature(validationToken string) string {
	return s.Hash(validationToken)
}

// VerificationSignature binds the validation and form signatures. mosparo
// returns the same value when it accepts a submission.
func (s *Signer) VerificationSignature(validationSignature, formSignature string) string {
	return s.Hash(validationSignature + formSignature)
}

// RequestSignature signs an API call: the endpoint path followed by the
// serialized body or query.
func (s *Signer) RequestSignature(path string, body formdata.Value) string {
	return s.Hash(path + formdata.Serialize(body))
}

// Equal reports whether two signatures are identical, in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func computeHMAC(key, message []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)

	return h.Sum(nil)
}
