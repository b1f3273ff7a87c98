package qrtoken

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerate_Format(t *testing.T) {
	payload := Generate(42, 3, "abc123", testSecret)

	parts := strings.Split(payload, "|")
	require.Len(t, parts, 5)
	assert.Equal(t, "v", parts[0])
	assert.Equal(t, "42", parts[1])
	assert.Equal(t, "3", parts[2])
	assert.Equal(t, "abc123", parts[3])
	assert.Len(t, parts[4], 64, "signature should be hex sha256")
	assert.Equal(t, strings.ToLower(parts[4]), parts[4], "signature should be lowercase")
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(7, 1, "nonce", testSecret)
	b := Generate(7, 1, "nonce", testSecret)
	assert.Equal(t, a, b)
}

func TestValidate_RoundTrip(t *testing.T) {
	cases := []struct {
		studentID uint
		version   int
		nonce     string
	}{
		{1, 1, "a"},
		{42, 3, "abc123"},
		{999999, 120, "f00dfeedf00dfeedf00dfeedf00dfeedf00dfeedf00dfeedf00dfeedf00dfeed"},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("id=%d", tc.studentID), func(t *testing.T) {
			payload := Generate(tc.studentID, tc.version, tc.nonce, testSecret)

			ok, id := Validate(payload, testSecret)
			require.True(t, ok)
			assert.Equal(t, tc.studentID, id)

			token, ok := Decode(payload, testSecret)
			require.True(t, ok)
			assert.Equal(t, tc.version, token.Version)
			assert.Equal(t, tc.nonce, token.Nonce)
		})
	}
}

func TestValidate_TamperedSignature(t *testing.T) {
	payload := Generate(42, 3, "abc123", testSecret)

	// Flip a single character in the signature field.
	sigStart := strings.LastIndex(payload, "|") + 1
	for i := sigStart; i < len(payload); i++ {
		tampered := []byte(payload)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}

		ok, id := Validate(string(tampered), testSecret)
		assert.False(t, ok, "flipped char at %d should fail", i)
		assert.Zero(t, id)
	}
}

func TestValidate_TamperedFields(t *testing.T) {
	payload := Generate(42, 3, "abc123", testSecret)
	parts := strings.Split(payload, "|")

	tamper := func(idx int, val string) string {
		p := make([]string, len(parts))
		copy(p, parts)
		p[idx] = val
		return strings.Join(p, "|")
	}

	tests := map[string]string{
		"student id": tamper(1, "43"),
		"qr version": tamper(2, "4"),
		"nonce":      tamper(3, "abc124"),
		"format":     tamper(0, "w"),
	}

	for name, tampered := range tests {
		t.Run(name, func(t *testing.T) {
			ok, id := Validate(tampered, testSecret)
			assert.False(t, ok)
			assert.Zero(t, id)
		})
	}
}

func TestValidate_CrossSecret(t *testing.T) {
	payload := Generate(42, 3, "abc123", "secret-a")

	ok, _ := Validate(payload, "secret-b")
	assert.False(t, ok)
}

func TestValidate_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"garbage":            "not-a-token",
		"too few fields":     "v|42|3|abc123",
		"too many fields":    "v|42|3|abc123|deadbeef|extra",
		"non-numeric id":     "v|forty|3|abc123|deadbeef",
		"non-numeric ver":    "v|42|three|abc123|deadbeef",
		"negative id":        "v|-1|3|abc123|deadbeef",
		"bad signature form": "v|42|3|abc123|zzzz",
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ok, id := Validate(payload, testSecret)
			assert.False(t, ok)
			assert.Zero(t, id)
		})
	}
}

func TestNewNonce(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)

	assert.Len(t, a, 64, "32 bytes hex-encoded")
	assert.NotEqual(t, a, b)
}
