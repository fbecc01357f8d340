package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: 1724800000123, ID: "0d4de0c5-9a4f-4b1e-bb1e-2f8a4c1d9e77"}

	out, ok := Decode(in.Encode())
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestCursor_TokenIsOpaque(t *testing.T) {
	token := Cursor{CreatedAt: 1724800000123, ID: "abc"}.Encode()

	// url-safe, no padding
	_, err := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, err)
	assert.NotContains(t, token, "=")
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%"},
		{"wrong shape", base64.RawURLEncoding.EncodeToString([]byte("justonepart"))},
		{"wrong version", base64.RawURLEncoding.EncodeToString([]byte("v9:123:id"))},
		{"non-numeric timestamp", base64.RawURLEncoding.EncodeToString([]byte("v1:abc:id"))},
		{"empty id", base64.RawURLEncoding.EncodeToString([]byte("v1:123:"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Decode(tt.token)
			assert.False(t, ok)
		})
	}
}

func TestDecode_IDMayContainSeparators(t *testing.T) {
	in := Cursor{CreatedAt: 42, ID: "odd:id:with:colons"}

	out, ok := Decode(in.Encode())
	require.True(t, ok)
	assert.Equal(t, in.ID, out.ID)
}
