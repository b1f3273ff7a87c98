package qrtoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// FormatVersion is the token schema generation marker. It is the first field
// of every payload and is covered by the signature; bump it only when the
// field layout changes.
const FormatVersion = "v"

const fieldCount = 5

// Token is a decoded QR payload whose signature has been verified.
// Currency of Version and Nonce against the stored student record is the
// caller's responsibility, not the codec's.
type Token struct {
	StudentID uint
	Version   int
	Nonce     string
}

// Generate produces the signed QR payload for a student:
//
//	v|<student_id>|<qr_version>|<nonce>|<hex hmac-sha256>
//
// Deterministic: the same inputs always yield the same payload.
func Generate(studentID uint, qrVersion int, nonce, secret string) string {
	data := fmt.Sprintf("%s|%d|%d|%s", FormatVersion, studentID, qrVersion, nonce)
	return data + "|" + sign(data, secret)
}

// Decode verifies the payload signature and returns the parsed token.
// It fails closed: wrong field count, unparseable integers, or a signature
// mismatch all return (nil, false) with no indication of which check failed.
func Decode(payload, secret string) (*Token, bool) {
	parts := strings.Split(payload, "|")
	if len(parts) != fieldCount {
		return nil, false
	}

	studentID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, false
	}
	qrVersion, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, false
	}

	data := strings.Join(parts[:fieldCount-1], "|")
	expected := sign(data, secret)

	// Constant-time comparison; the signature check must not leak timing.
	if !hmac.Equal([]byte(parts[4]), []byte(expected)) {
		return nil, false
	}

	return &Token{
		StudentID: uint(studentID),
		Version:   qrVersion,
		Nonce:     parts[3],
	}, true
}

// Validate verifies the payload signature and returns the student ID.
// Returns (false, 0) for any malformed or forged payload.
func Validate(payload, secret string) (bool, uint) {
	token, ok := Decode(payload, secret)
	if !ok {
		return false, 0
	}
	return true, token.StudentID
}

// NewNonce returns a fresh 32-byte random nonce, hex-encoded.
func NewNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// sign computes the lowercase hex HMAC-SHA256 of data under secret
func sign(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
