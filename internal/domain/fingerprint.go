package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Fingerprint returns a deterministic cache key component derived from every
// filter field. Two filters equal in every field always fingerprint
// identically; changing any single field (backend and fuzzy included)
// changes the fingerprint.
//
// The serialization is canonical: fields are written in a fixed order with
// explicit separators, tags are sorted, and absent optional fields are
// written as a marker so nil and zero values cannot collide.
func (f *SearchFilter) Fingerprint() string {
	h := sha256.New()

	fmt.Fprintf(h, "v1|req=%d", f.RequesterID)
	fmt.Fprintf(h, "|q=%s", strings.ToLower(strings.TrimSpace(f.QueryText)))
	fmt.Fprintf(h, "|tags=%s", canonicalTags(f.Tags))

	writeOptTime(h, "from", f.DateFrom)
	writeOptTime(h, "to", f.DateTo)

	if f.FriendID != nil {
		fmt.Fprintf(h, "|friend=%d", *f.FriendID)
	} else {
		io.WriteString(h, "|friend=-")
	}

	fmt.Fprintf(h, "|page=%d|size=%d|sort=%s|fuzzy=%t|backend=%s",
		f.Page, f.PageSize, f.SortMode, f.Fuzzy, f.Backend)

	return hex.EncodeToString(h.Sum(nil))
}

// canonicalTags sorts a copy of the tag set so incidental ordering does not
// change the fingerprint.
func canonicalTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)

	return strings.Join(sorted, ",")
}

func writeOptTime(w io.Writer, label string, t *time.Time) {
	if t != nil {
		fmt.Fprintf(w, "|%s=%d", label, t.UTC().UnixNano())
	} else {
		fmt.Fprintf(w, "|%s=-", label)
	}
}
