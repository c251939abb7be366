// Package twitter is a client for the follower endpoints of the Twitter REST API.
//
// It exposes exactly what the crawler needs: an identity check and cursor
// paging over an account's follower ids. Every page reports the rate-limit
// budget read from the response headers; the decision to pause on an
// exhausted budget is left to the caller.
//
// Failures are returned as *errors.Error classified by status code:
// 401 and 403 become access denied, 404 not found, and everything else
// (429, server errors, transport failures, malformed JSON) other.
// Transport failures and gateway errors are retried inside the client.
//
// Example usage:
//
//	client := twitter.NewClient(&cfg.Twitter, &cfg.Retry, token, log)
//
//	cursor := twitter.FirstCursor
//	for {
//	    page, err := client.FollowerIDs(ctx, accountID, cursor)
//	    if err != nil {
//	        return err
//	    }
//	    ids = append(ids, page.IDs...)
//	    if page.Done() {
//	        break
//	    }
//	    cursor = page.NextCursor
//	}
package twitter
