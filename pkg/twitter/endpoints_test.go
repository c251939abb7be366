package twitter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowerIDsURL(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantCount string
	}{
		{"explicit count", 200, "200"},
		{"zero uses max", 0, "5000"},
		{"above max is capped", 10000, "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := FollowerIDsURL("https://api.example.com/1.1/", 12, 99, tt.count)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "/1.1/followers/ids.json", u.Path)
			assert.Equal(t, "12", u.Query().Get("user_id"))
			assert.Equal(t, "99", u.Query().Get("cursor"))
			assert.Equal(t, tt.wantCount, u.Query().Get("count"))
		})
	}
}

func TestVerifyCredentialsURL(t *testing.T) {
	u, err := url.Parse(VerifyCredentialsURL(DefaultBaseURL))
	require.NoError(t, err)
	assert.Equal(t, "api.twitter.com", u.Host)
	assert.Equal(t, "/1.1/account/verify_credentials.json", u.Path)
	assert.Equal(t, "true", u.Query().Get("skip_status"))
}
