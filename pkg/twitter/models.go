package twitter

import "followrank/pkg/ratelimit"

// User is the authenticated identity returned by VerifyCredentials
type User struct {
	ID             int64  `json:"id"`
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
	Protected      bool   `json:"protected"`
}

// idsResponse is the wire form of a follower ids page
type idsResponse struct {
	IDs            []int64 `json:"ids"`
	NextCursor     int64   `json:"next_cursor"`
	PreviousCursor int64   `json:"previous_cursor"`
}

// IDsPage is one page of follower ids plus the budget reported with it
type IDsPage struct {
	IDs        []int64
	NextCursor int64
	RateLimit  ratelimit.Budget
}

// Done reports whether this was the last page
func (p *IDsPage) Done() bool {
	return p.NextCursor == LastCursor
}

// apiErrors is the error payload returned with non-2xx responses
type apiErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

func (e apiErrors) message() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Message
	}
	return e.Error
}
