package scoring

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/wkmg/rfp-radar/internal/models"
)

// Fingerprint identifies a bid across sources. Title and agency are
// lowercased and stripped of whitespace before hashing so the same
// announcement collected from the API and from a crawl collapses to one
// record. The first 16 hex characters are enough to avoid collisions at
// this corpus size.
func Fingerprint(title, agency string) string {
	key := stripSpace(strings.ToLower(title)) + stripSpace(strings.ToLower(agency))
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// Dedup keeps the first bid per fingerprint in arrival order and fills the
// Fingerprint field on every survivor. API results are merged ahead of
// crawl results, so the API record wins when both saw the same bid.
func Dedup(bids []models.Bid) []models.Bid {
	seen := make(map[string]struct{}, len(bids))
	out := make([]models.Bid, 0, len(bids))
	for _, b := range bids {
		fp := Fingerprint(b.Title, b.Agency)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		b.Fingerprint = fp
		out = append(out, b)
	}
	return out
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
