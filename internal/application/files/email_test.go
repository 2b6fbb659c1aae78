package files

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailHeaders(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSubject string
		wantDate    *time.Time
	}{
		{
			name:        "full headers",
			raw:         "From: Dana <dana@acme.test>\r\nSubject: Re: Pricing\r\nDate: Mon, 02 Dec 2024 10:15:00 +0100\r\n\r\nHi team,",
			wantSubject: "Re: Pricing",
			wantDate:    ptr(time.Date(2024, 12, 2, 9, 15, 0, 0, time.UTC)),
		},
		{
			name:        "encoded subject, leading blank lines",
			raw:         "\n\nFrom: a@b.test\nSubject: =?UTF-8?Q?Caf=C3=A9_order?=\n\nbody",
			wantSubject: "Café order",
		},
		{
			name: "plain pasted text",
			raw:  "Hi Dana,\nthanks for the call yesterday.",
		},
		{
			name: "header-like line without from or subject",
			raw:  "Note: remember pricing\n\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, date := emailHeaders(tt.raw)
			assert.Equal(t, tt.wantSubject, subject)
			if tt.wantDate == nil {
				assert.Nil(t, date)
				return
			}
			require.NotNil(t, date)
			assert.True(t, tt.wantDate.Equal(*date))
			assert.Equal(t, time.UTC, date.Location())
		})
	}
}

func ptr[T any](v T) *T { return &v }
