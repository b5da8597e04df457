package dedupe

import (
	"crypto/md5" //nolint:gosec // fingerprints only suppress accidental duplicate inserts
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"

	"github.com/reconhq/mailrecon/pkg/record"
)

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	punctuationPattern = regexp.MustCompile(`[^\w\s]`)
)

// normalizeContent prepares free text for similarity comparison:
// lower-cased, Unicode-normalized, HTML stripped, whitespace collapsed,
// punctuation removed.
func normalizeContent(content string) string {
	content = strings.ToLower(content)
	content = norm.NFKC.String(content)
	content = htmlTagPattern.ReplaceAllString(content, "")
	content = whitespacePattern.ReplaceAllString(content, " ")
	content = punctuationPattern.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// contentFingerprint hashes the record's normalized subject, body, and
// sender in fixed order. Records with none of the three produce "".
// Collisions only risk suppressing a duplicate insert, never data loss.
func contentFingerprint(m record.MailRecord) string {
	var parts []string

	if subject := strings.ToLower(strings.TrimSpace(m.Subject)); subject != "" {
		parts = append(parts, norm.NFKC.String(subject))
	}

	if body := strings.ToLower(strings.TrimSpace(m.Body)); body != "" {
		body = whitespacePattern.ReplaceAllString(body, " ")
		body = punctuationPattern.ReplaceAllString(body, "")
		parts = append(parts, norm.NFKC.String(body))
	}

	if sender := strings.ToLower(strings.TrimSpace(m.SenderEmail)); sender != "" {
		parts = append(parts, norm.NFKC.String(sender))
	}

	if len(parts) == 0 {
		return ""
	}

	sum := md5.Sum([]byte(strings.Join(parts, "|"))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// similarityRatio computes a Ratcliff/Obershelp sequence similarity
// between two strings, compared rune by rune.
func similarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	matcher := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return matcher.Ratio()
}

// splitRunes turns a string into one element per rune for the sequence
// matcher.
func splitRunes(s string) []string {
	runes := []rune(s)
	elements := make([]string, len(runes))
	for i, r := range runes {
		elements[i] = string(r)
	}
	return elements
}
