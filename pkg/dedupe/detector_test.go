package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/record"
)

func newTestDetector(opts ...Option) *Detector {
	opts = append([]Option{WithLogger(logging.Nop)}, opts...)
	return New(opts...)
}

func TestIdentifierMatchShortCircuits(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		MessageID: "<ABC123@mail.example.com>",
		Subject:   "Quarterly Report",
		SentTime:  "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{{
		MessageID: "<abc123@MAIL.EXAMPLE.COM>",
		Subject:   "Completely different subject",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 1, report.DuplicateCount)
	assert.Equal(t, 1.0, report.BestConfidence)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, []string{"identifier header match"}, report.Duplicates[0].Reasons)

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.TotalComparisons)
	assert.Equal(t, int64(1), stats.IdentifierMatches)
}

func TestMessageIDFromHeadersAndRawHeaders(t *testing.T) {
	fromHeaders := record.MailRecord{
		Headers: map[string]string{"message-id": "<id-1@x>"},
	}
	assert.Equal(t, "id-1@x", extractMessageID(fromHeaders))

	fromRaw := record.MailRecord{
		RawHeaders: "Received: by mx.example.com\r\nMessage-ID: <id-2@x>\r\nSubject: hi\r\n",
	}
	assert.Equal(t, "id-2@x", extractMessageID(fromRaw))

	assert.Equal(t, "", extractMessageID(record.MailRecord{}))
}

func TestContentFingerprintMatch(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		Subject:     "Invoice 2291",
		Body:        "Please find the invoice attached. Regards, Billing",
		SenderEmail: "billing@example.com",
	}
	existing := []record.MailRecord{{
		Subject:     "Invoice 2291",
		Body:        "Please   find the invoice attached.   Regards, Billing!",
		SenderEmail: "BILLING@example.com",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.95, report.BestConfidence)
	assert.Contains(t, report.Duplicates[0].Reasons, "content fingerprint match")
}

func TestFuzzyTimestampSubjectMatch(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		Subject:     "Test Email Subject",
		SenderEmail: "a@one.example.com",
		SentTime:    "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "Test Email Subject",
		SenderEmail: "b@two.example.com",
		SentTime:    "2024-06-10T14:33:00Z", // 3 minutes apart, inside default window
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.85, report.BestConfidence)
	assert.Contains(t, report.Duplicates[0].Reasons[0], "timestamp + subject match")

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.FuzzyTimestampMatches)
	assert.Equal(t, int64(1), stats.SubjectMatches)
}

func TestFuzzyTimestampSubjectMatchWidenedWindow(t *testing.T) {
	d := newTestDetector(WithFuzzyWindow(45 * time.Minute))

	candidate := record.MailRecord{
		Subject:     "Test Email Subject",
		SenderEmail: "a@one.example.com",
		SentTime:    "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "Test Email Subject",
		SenderEmail: "b@two.example.com",
		SentTime:    "2024-06-10T15:00:00Z", // 30 minutes apart
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.85, report.BestConfidence)
}

func TestSameSubjectOutsideWindowIsNoDuplicate(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		Subject:     "Delinquent Premium Report",
		SenderEmail: "reports@carrier.example.com",
		SentTime:    "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "Delinquent Premium Report",
		SenderEmail: "archive@crm.example.com",
		SentTime:    "2024-06-10T16:00:00Z", // 90 minutes apart
	}}

	report := d.FindDuplicates(candidate, existing)
	assert.False(t, report.HasDuplicates)
	assert.Equal(t, 0, report.DuplicateCount)
	assert.Nil(t, report.BestMatch)
	assert.Equal(t, int64(1), d.Stats().NoMatches)
}

func TestSenderRecipientTimestampMatch(t *testing.T) {
	d := newTestDetector(WithMailboxOwner("owner@crm.example.com"))

	candidate := record.MailRecord{
		Subject:     "Re: contract draft",
		SenderEmail: "Partner@Firm.example.com",
		SentTime:    "2024-06-10T09:00:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "totally unrelated line",
		SenderEmail: "partner@firm.example.com",
		SentTime:    "2024-06-10T09:02:00Z",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.80, report.BestConfidence)
	assert.Contains(t, report.Duplicates[0].Reasons, "sender + recipient + timestamp match")
}

func TestSenderExtractedFromDescription(t *testing.T) {
	d := newTestDetector(WithMailboxOwner("owner@crm.example.com"))

	candidate := record.MailRecord{
		Subject:     "lunch?",
		SenderEmail: "bob@example.com",
		SentTime:    "2024-06-10T09:00:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "different words here",
		Description: "Email from: Bob@Example.com regarding lunch",
		SentTime:    "2024-06-10T09:01:00Z",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.80, report.BestConfidence)
}

func TestSenderRecipientFailsOpenOnMissingRecipient(t *testing.T) {
	// No mailbox owner configured and only one side carries a
	// recipient: the recipient criterion must not block the strategy.
	d := newTestDetector()

	candidate := record.MailRecord{
		Subject:        "shipment update",
		SenderEmail:    "logistics@firm.example.com",
		RecipientEmail: "owner@crm.example.com",
		SentTime:       "2024-06-10T09:00:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "another topic entirely",
		SenderEmail: "logistics@firm.example.com",
		SentTime:    "2024-06-10T09:01:00Z",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.80, report.BestConfidence)
	assert.Contains(t, report.Duplicates[0].Reasons, "sender + recipient + timestamp match")
}

func TestBodySimilarityMatch(t *testing.T) {
	d := newTestDetector()

	body := "Hello team, the deployment is scheduled for Friday at noon. " +
		"Please review the checklist and confirm your availability."

	candidate := record.MailRecord{
		Subject:     "deployment schedule",
		SenderEmail: "ops@one.example.com",
		Body:        body,
	}
	existing := []record.MailRecord{{
		Subject:     "FW: planning",
		SenderEmail: "crm@two.example.com",
		Body:        "<div>" + body + "</div>",
	}}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 0.75, report.BestConfidence)
	assert.Contains(t, report.Duplicates[0].Reasons[0], "body similarity match")
	assert.Equal(t, int64(1), d.Stats().BodyMatches)
}

func TestUnparsableTimestampFailsClosed(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		Subject:     "Test Email Subject",
		SenderEmail: "a@one.example.com",
		SentTime:    "sometime last Tuesday",
	}
	existing := []record.MailRecord{{
		Subject:     "Test Email Subject",
		SenderEmail: "b@two.example.com",
		SentTime:    "2024-06-10T14:33:00Z",
	}}

	report := d.FindDuplicates(candidate, existing)
	assert.False(t, report.HasDuplicates)
}

func TestEmptySubjectCannotFire(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		SenderEmail: "a@one.example.com",
		SentTime:    "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{{
		Subject:     "some subject",
		SenderEmail: "b@two.example.com",
		SentTime:    "2024-06-10T14:31:00Z",
	}}

	report := d.FindDuplicates(candidate, existing)
	assert.False(t, report.HasDuplicates)
}

func TestBestMatchTracksHighestConfidence(t *testing.T) {
	d := newTestDetector()

	candidate := record.MailRecord{
		MessageID:   "<winner@x>",
		Subject:     "Test Email Subject",
		SenderEmail: "a@one.example.com",
		SentTime:    "2024-06-10T14:30:00Z",
	}
	existing := []record.MailRecord{
		{
			Subject:     "Test Email Subject",
			SenderEmail: "b@two.example.com",
			SentTime:    "2024-06-10T14:32:00Z",
		},
		{
			MessageID: "<WINNER@x>",
			Subject:   "archived copy",
		},
	}

	report := d.FindDuplicates(candidate, existing)
	require.True(t, report.HasDuplicates)
	assert.Equal(t, 2, report.DuplicateCount)
	assert.Equal(t, 1.0, report.BestConfidence)
	require.NotNil(t, report.BestMatch)
	assert.Equal(t, "<WINNER@x>", report.BestMatch.MessageID)
}

func TestResetStats(t *testing.T) {
	d := newTestDetector()
	d.FindDuplicates(record.MailRecord{Subject: "x"}, nil)
	require.Equal(t, int64(1), d.Stats().TotalComparisons)

	d.ResetStats()
	assert.Equal(t, Stats{}, d.Stats())
}
