package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor is the position of the last ledger entry on a page. Entries are
// paged newest first by (date, sequence).
type Cursor struct {
	Date     time.Time
	Sequence int64
}

// EncodeToken creates a base64 encoded token from an entry date and its append sequence.
func EncodeToken(date time.Time, sequence int64) string {
	tokenStr := fmt.Sprintf("%s|%d", date.UTC().Format(timeFormat), sequence)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	sequence, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return Cursor{Date: date, Sequence: sequence}, nil
}

// Before reports whether an entry at (date, sequence) sorts after the cursor
// in newest-first order, i.e. belongs on a later page.
func (c Cursor) Before(date time.Time, sequence int64) bool {
	if date.Equal(c.Date) {
		return sequence < c.Sequence
	}
	return date.Before(c.Date)
}
