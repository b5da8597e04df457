package dedupe

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/record"
)

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "hello world", normalizeContent("<p>Hello,   World!</p>"))
	assert.Equal(t, "", normalizeContent("   <br/> "))
	assert.Equal(t, "a b c", normalizeContent("A\n\tB   C"))
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 1.0, similarityRatio("abc", "abc"))
	assert.Equal(t, 0.0, similarityRatio("abc", "xyz"))
	assert.Greater(t, similarityRatio("hello world", "hello there world"), 0.7)
}

func TestContentFingerprint(t *testing.T) {
	a := record.MailRecord{Subject: "Invoice", Body: "body text here", SenderEmail: "a@x.com"}
	b := record.MailRecord{Subject: "invoice", Body: "Body   text here!", SenderEmail: "A@X.COM"}
	assert.Equal(t, contentFingerprint(a), contentFingerprint(b))

	c := record.MailRecord{Subject: "Invoice", Body: "different body", SenderEmail: "a@x.com"}
	assert.NotEqual(t, contentFingerprint(a), contentFingerprint(c))

	assert.Equal(t, "", contentFingerprint(record.MailRecord{}))
}

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)

	for _, input := range []string{
		"2024-06-10T14:30:00Z",
		"2024-06-10T14:30:00",
		"2024-06-10 14:30:00",
		"06/10/2024 14:30:00",
	} {
		got, err := parseTimestamp(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}

	got, err := parseTimestamp(want)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTimestamp(utc.Time{Time: want})
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestParseTimestampFailures(t *testing.T) {
	for _, input := range []any{nil, "", "   ", "next Tuesday", 42} {
		_, err := parseTimestamp(input)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnparsableTimestamp)
	}
}
