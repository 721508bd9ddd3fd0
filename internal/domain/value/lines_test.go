package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smartdeals/internal/domain/value"
)

func TestTextToLines(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name  string
		text  string
		lines []string
	}{
		{
			name:  "Empty",
			text:  "",
			lines: []string{},
		},
		{
			name:  "Single keyword",
			text:  "RTX 5060",
			lines: []string{"RTX 5060"},
		},
		{
			name:  "Trimmed and blank lines dropped",
			text:  "  RTX 5060 \n\n   \nTênis New Balance\r\n",
			lines: []string{"RTX 5060", "Tênis New Balance"},
		},
		{
			name:  "Order kept",
			text:  "b\na\nc",
			lines: []string{"b", "a", "c"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.lines, value.TextToLines(tc.text))
		})
	}
}

func TestLinesRoundTripIsIdempotent(t *testing.T) {
	rq := require.New(t)

	inputs := [][]string{
		{},
		{"RTX 5060", "Tênis New Balance"},
		{" padded ", "", "   ", "https://amzn.to/abc"},
	}

	for _, input := range inputs {
		once := value.TextToLines(value.LinesToText(input))
		twice := value.TextToLines(value.LinesToText(once))

		rq.Equal(once, twice)

		for _, line := range once {
			rq.NotEmpty(line)
		}
	}
}

func TestParseMode(t *testing.T) {
	rq := require.New(t)

	mode, err := value.ParseMode("AUTO")
	rq.NoError(err)
	rq.Equal(value.ModeAuto, mode)

	_, err = value.ParseMode("auto")
	rq.ErrorContains(err, `mode "auto"`)

	provider, err := value.ParseWhatsAppProvider("cloud_api")
	rq.NoError(err)
	rq.Equal(value.WhatsAppCloudAPI, provider)

	_, err = value.ParseWhatsAppProvider("sms")
	rq.Error(err)
}

func TestParseDealID(t *testing.T) {
	rq := require.New(t)

	id, err := value.ParseDealID(" 5 ")
	rq.NoError(err)
	rq.Equal(value.DealID(5), id)
	rq.Equal("5", id.String())

	_, err = value.ParseDealID("0")
	rq.Error(err)

	_, err = value.ParseDealID("five")
	rq.Error(err)
}

func TestDealStatus(t *testing.T) {
	rq := require.New(t)

	rq.True(value.DealPendingApproval.AwaitsDecision())
	rq.True(value.DealPending.AwaitsDecision())
	rq.False(value.DealApproved.AwaitsDecision())
	rq.True(value.DealRejected.IsTerminal())
	rq.True(value.DealPosted.IsTerminal())
	rq.False(value.DealScored.IsTerminal())
}
