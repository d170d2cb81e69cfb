package xid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// idLayout keeps ids of the same prefix in creation order when compared as strings.
const idLayout = "20060102T150405.000000000"

// New returns "<prefix>-<utc timestamp>-<random hex>".
func New(prefix string) string {
	return NewAt(prefix, time.Now())
}

func NewAt(prefix string, at time.Time) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(at.UTC().Format(idLayout))

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		b.WriteByte('-')
		b.WriteString(strconv.FormatInt(at.UnixNano()%1_000_000, 36))
		return b.String()
	}
	b.WriteByte('-')
	b.WriteString(hex.EncodeToString(buf))
	return b.String()
}
