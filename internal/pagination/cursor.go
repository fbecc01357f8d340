// Package pagination implements the opaque cursor used by list endpoints.
//
// A cursor encodes the (created_at, id) sort key of the last row on the
// previous page. The token is versioned so the sort key can evolve without
// breaking clients holding old cursors.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Version is the current cursor token version
const Version = "v1"

// Cursor is the decoded sort key of the last-seen row
type Cursor struct {
	CreatedAt int64
	ID        string
}

// Encode serializes the cursor into an opaque token
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%s:%d:%s", Version, c.CreatedAt, c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses an opaque token back into a Cursor. A malformed token
// (bad encoding, wrong version, non-numeric timestamp, empty id) returns
// ok=false; callers treat that as "no cursor" and serve the first page.
func Decode(token string) (Cursor, bool) {
	if token == "" {
		return Cursor{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}

	parts := strings.SplitN(string(raw), ":", 3)
	if len(parts) != 3 || parts[0] != Version {
		return Cursor{}, false
	}

	createdAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, false
	}

	if parts[2] == "" {
		return Cursor{}, false
	}

	return Cursor{CreatedAt: createdAt, ID: parts[2]}, true
}
