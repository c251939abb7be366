package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the REST API root
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// VerifyCredentialsEndpoint returns the authenticated identity
	VerifyCredentialsEndpoint = "/account/verify_credentials.json"

	// FollowerIDsEndpoint lists follower ids of an account, one cursor page at a time
	FollowerIDsEndpoint = "/followers/ids.json"

	// FirstCursor requests the first page
	FirstCursor int64 = -1

	// LastCursor is returned as the next cursor once every page was read
	LastCursor int64 = 0

	// MaxPageSize is the largest page the endpoint serves
	MaxPageSize = 5000
)

// VerifyCredentialsURL constructs the identity check URL
func VerifyCredentialsURL(baseURL string) string {
	params := url.Values{}
	params.Set("skip_status", "true")
	params.Set("include_entities", "false")

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), VerifyCredentialsEndpoint, params.Encode())
}

// FollowerIDsURL constructs the URL of one page of follower ids
func FollowerIDsURL(baseURL string, accountID, cursor int64, count int) string {
	if count <= 0 || count > MaxPageSize {
		count = MaxPageSize
	}

	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(accountID, 10))
	params.Set("cursor", strconv.FormatInt(cursor, 10))
	params.Set("count", strconv.Itoa(count))
	params.Set("stringify_ids", "false")

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), FollowerIDsEndpoint, params.Encode())
}
