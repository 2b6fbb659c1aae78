package whisper

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
)

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(" ", "", time.Second)
	assert.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantErr   string
		wantQuota bool
	}{
		{name: "ok", status: 200, body: `{"text":"hello world"}`, want: "hello world"},
		{name: "error field", status: 200, body: `{"error":"unsupported format"}`, wantErr: "unsupported format"},
		{name: "server error", status: 500, body: `{"error":"model crashed"}`, wantErr: "model crashed"},
		{name: "plain text failure", status: 502, body: `bad gateway`, wantErr: "502"},
		{name: "quota", status: 429, body: `{"error":"slow down"}`, wantErr: "slow down", wantQuota: true},
		{name: "garbage", status: 200, body: `not json`, wantErr: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transcribe", r.URL.Path)
				assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
				require.NoError(t, r.ParseMultipartForm(1<<20))
				f, hdr, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				assert.Equal(t, "call.wav", hdr.Filename)
				data, _ := io.ReadAll(f)
				assert.Equal(t, "AUDIO", string(data))

				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL+"/", "k", time.Second)
			require.NoError(t, err)

			got, err := c.Transcribe(t.Context(), ai.Audio{Name: "call.wav", Data: []byte("AUDIO")})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				if tt.wantQuota {
					assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
