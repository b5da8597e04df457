package dedupe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reconhq/mailrecon/pkg/record"
)

// Strategy confidences, highest priority first.
const (
	confidenceIdentifier      = 1.0
	confidenceFingerprint     = 0.95
	confidenceFuzzySubject    = 0.85
	confidenceSenderRecipient = 0.80
	confidenceBodySimilarity  = 0.75
)

// messageIDHeaders are the header field names checked for an identifier.
var messageIDHeaders = []string{"Message-ID", "message-id", "MessageID", "message_id"}

var (
	rawMessageIDPattern = regexp.MustCompile(`(?i)Message-ID:\s*<?([^<>\r\n]+?)>?\r?\n`)
	descSenderPattern   = regexp.MustCompile(`(?i)from:\s*<?([^\s<>]+)>?`)
)

// compare runs all strategies against one candidate/existing pair. The
// identifier strategy short-circuits; everything after combines by
// maximum confidence.
func (d *Detector) compare(candidate, existing record.MailRecord) matchResult {
	var result matchResult

	// Strategy 1: identifier header match.
	if d.useIdentifier && d.matchByIdentifier(candidate, existing) {
		d.stats.identifierMatches.Add(1)
		return matchResult{
			isDuplicate: true,
			confidence:  confidenceIdentifier,
			reasons:     []string{"identifier header match"},
		}
	}

	// Strategy 2: content fingerprint match.
	if d.useFingerprint && d.matchByFingerprint(candidate, existing) {
		d.stats.fingerprintMatches.Add(1)
		result.confidence = max(result.confidence, confidenceFingerprint)
		result.reasons = append(result.reasons, "content fingerprint match")
	}

	// Strategy 3: fuzzy timestamp + subject similarity.
	timeMatch := d.matchByFuzzyTimestamp(candidate, existing)
	if subjectMatch, similarity := d.matchBySubject(candidate, existing); timeMatch && subjectMatch {
		d.stats.fuzzyTimestampMatches.Add(1)
		d.stats.subjectMatches.Add(1)
		result.confidence = max(result.confidence, confidenceFuzzySubject)
		result.reasons = append(result.reasons,
			fmt.Sprintf("timestamp + subject match (similarity: %.2f)", similarity))
	}

	// Strategy 4: sender + recipient + timestamp.
	if d.matchBySenderRecipient(candidate, existing) && timeMatch {
		d.stats.senderRecipientMatches.Add(1)
		result.confidence = max(result.confidence, confidenceSenderRecipient)
		result.reasons = append(result.reasons, "sender + recipient + timestamp match")
	}

	// Strategy 5: body similarity.
	if bodyMatch, similarity := d.matchByBody(candidate, existing); bodyMatch {
		d.stats.bodyMatches.Add(1)
		result.confidence = max(result.confidence, confidenceBodySimilarity)
		result.reasons = append(result.reasons,
			fmt.Sprintf("body similarity match (%.2f)", similarity))
	}

	result.isDuplicate = result.confidence >= DuplicateThreshold
	return result
}

// matchByIdentifier compares Message-ID-equivalent identifiers,
// case-insensitively, when both sides carry one.
func (d *Detector) matchByIdentifier(candidate, existing record.MailRecord) bool {
	a := extractMessageID(candidate)
	b := extractMessageID(existing)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// extractMessageID finds the record's identifier header, checking the
// typed field, the header map, and finally the raw header block.
func extractMessageID(m record.MailRecord) string {
	if m.MessageID != "" {
		return strings.Trim(m.MessageID, "<>")
	}

	for _, field := range messageIDHeaders {
		if id, ok := m.Headers[field]; ok && id != "" {
			return strings.Trim(id, "<>")
		}
	}

	if m.RawHeaders != "" {
		if groups := rawMessageIDPattern.FindStringSubmatch(m.RawHeaders + "\n"); groups != nil {
			return strings.TrimSpace(groups[1])
		}
	}

	return ""
}

// matchByFingerprint compares normalized content fingerprints. Records
// with no content at all produce no fingerprint and cannot match.
func (d *Detector) matchByFingerprint(candidate, existing record.MailRecord) bool {
	a := contentFingerprint(candidate)
	b := contentFingerprint(existing)
	if a == "" || b == "" {
		return false
	}
	return a == b
}

// matchByFuzzyTimestamp holds when both timestamps parse and lie within
// the configured window. Unparsable timestamps fail closed.
func (d *Detector) matchByFuzzyTimestamp(candidate, existing record.MailRecord) bool {
	a, err := parseTimestamp(candidate.SentTime)
	if err != nil {
		return false
	}

	existingTime := existing.SentTime
	if existingTime == nil {
		// CRM-side records may carry the activity start instead.
		existingTime = existing.Extra["actualstart"]
	}
	b, err := parseTimestamp(existingTime)
	if err != nil {
		return false
	}

	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d.fuzzyWindow
}

// matchBySubject returns whether the normalized subject similarity
// meets the threshold, along with the computed ratio. An empty subject
// on either side means the strategy cannot fire.
func (d *Detector) matchBySubject(candidate, existing record.MailRecord) (bool, float64) {
	a := strings.TrimSpace(candidate.Subject)
	b := strings.TrimSpace(existing.Subject)
	if a == "" || b == "" {
		return false, 0
	}

	similarity := similarityRatio(strings.ToLower(a), strings.ToLower(b))
	return similarity >= d.subjectThreshold, similarity
}

// matchBySenderRecipient holds when sender addresses and recipient
// addresses both agree, case-insensitively. The existing side's sender
// may be extracted from free text; a missing recipient defaults to the
// configured mailbox owner.
func (d *Detector) matchBySenderRecipient(candidate, existing record.MailRecord) bool {
	sender1 := strings.ToLower(strings.TrimSpace(candidate.SenderEmail))
	sender2 := strings.ToLower(strings.TrimSpace(existing.SenderEmail))

	if sender2 == "" && existing.Description != "" {
		if groups := descSenderPattern.FindStringSubmatch(existing.Description); groups != nil {
			sender2 = strings.ToLower(strings.TrimSpace(groups[1]))
		}
	}

	if sender1 == "" || sender2 == "" || sender1 != sender2 {
		return false
	}

	recipient1 := strings.ToLower(strings.TrimSpace(candidate.RecipientEmail))
	recipient2 := strings.ToLower(strings.TrimSpace(existing.RecipientEmail))
	owner := strings.ToLower(d.mailboxOwner)
	if recipient1 == "" {
		recipient1 = owner
	}
	if recipient2 == "" {
		recipient2 = owner
	}

	// A side with no recipient, even after owner defaulting, does not
	// block the strategy: the criterion fails open.
	if recipient1 == "" || recipient2 == "" {
		return true
	}
	return recipient1 == recipient2
}

// matchByBody returns whether the normalized body similarity meets the
// threshold, along with the computed ratio.
func (d *Detector) matchByBody(candidate, existing record.MailRecord) (bool, float64) {
	a := normalizeContent(candidate.Body)
	b := normalizeContent(existing.Body)
	if a == "" || b == "" {
		return false, 0
	}

	similarity := similarityRatio(a, b)
	return similarity >= d.bodyThreshold, similarity
}
