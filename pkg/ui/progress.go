package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// StatusTracker keeps track of crawl progress across restarts
type StatusTracker struct {
	StartTime time.Time
	Initial   int
}

// NewStatusTracker starts tracking with the number of accounts already crawled
func NewStatusTracker(alreadyCrawled int) *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
		Initial:   alreadyCrawled,
	}
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// Summary describes the crawl given the current number of crawled accounts
func (st *StatusTracker) Summary(crawled int) string {
	added := crawled - st.Initial
	if added < 0 {
		added = 0
	}
	return fmt.Sprintf("%s accounts crawled (%s new) in %s",
		humanize.Comma(int64(crawled)),
		humanize.Comma(int64(added)),
		st.GetElapsedTime().Round(time.Second),
	)
}

// PrintCrawlStart announces where the crawl starts from
func PrintCrawlStart(maxLevel int, seedFile, checkpointFile string, resuming bool) {
	if IsQuietMode() {
		return
	}
	PrintHighlight("[CRAWLING FOLLOWER GRAPH]")
	PrintInfo("Max level", fmt.Sprintf("%d", maxLevel))
	if resuming {
		PrintInfo("Resuming from", checkpointFile)
	} else {
		PrintInfo("Seeds", seedFile)
	}
}
