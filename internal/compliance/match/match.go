// Package match scores certificate file names against product names so
// unlinked certificates of analysis can be attached to the product they
// document. The heuristic is deliberately simple and stable: downstream
// audit behavior depends on its exact scores.
package match

import (
	"path"
	"strings"

	"github.com/verdantry/canopy-backend/internal/domain"
)

// MatchThreshold is the minimum score BestMatch accepts as a link
// candidate. Scores at or above it are trusted; everything lower is
// treated as no match.
const MatchThreshold = 50

const (
	scoreExact    = 100
	scoreContains = 85
)

var knownExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Normalize lowercases s and strips every character outside [a-z0-9].
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeFileName strips any path prefix and a known certificate
// extension before normalizing, so "coas/Blue-Dream_1g.PDF" and
// "Blue Dream 1g" reduce to the same form.
func NormalizeFileName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	if _, ok := knownExtensions[ext]; ok {
		base = base[:len(base)-len(ext)]
	}
	return Normalize(base)
}

// Score rates how well a certificate file name matches a product name.
// Equal normal forms score 100, one containing the other scores 85,
// anything else scores 0.
func Score(productName, fileName string) int {
	p := Normalize(productName)
	f := NormalizeFileName(fileName)
	if p == "" || f == "" {
		return 0
	}
	if p == f {
		return scoreExact
	}
	if strings.Contains(f, p) || strings.Contains(p, f) {
		return scoreContains
	}
	return 0
}

// Candidate is a certificate proposed as the best link for a product.
type Candidate struct {
	Certificate *domain.Certificate
	Score       int
}

// BestMatch picks the unlinked certificate whose file name best matches
// productName. Certificates already linked to a product are ignored.
// Returns nil when no candidate reaches MatchThreshold. Ties on score
// resolve to the certificate with the lexicographically smallest UUID
// string, keeping the choice deterministic across runs.
func BestMatch(productName string, certs []*domain.Certificate) *Candidate {
	var best *Candidate
	for _, cert := range certs {
		if cert == nil || cert.Linked() {
			continue
		}
		score := Score(productName, cert.FileName)
		if score < MatchThreshold {
			continue
		}
		if best == nil || score > best.Score ||
			(score == best.Score && cert.ID.String() < best.Certificate.ID.String()) {
			best = &Candidate{Certificate: cert, Score: score}
		}
	}
	return best
}
