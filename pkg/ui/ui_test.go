package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"followrank/pkg/pagerank"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetNoColor(true)
	t.Cleanup(func() {
		SetOutput(nil)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintFunctions(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Max level", "2")
	PrintSuccess("done")
	PrintWarning("careful", "disk almost full")
	PrintError("failed", "boom")

	out := buf.String()
	assert.Contains(t, out, "Max level: 2")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful: disk almost full")
	assert.Contains(t, out, "failed: boom")
}

func TestQuietMode(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)

	PrintInfo("hidden", "value")
	PrintLogo()
	PrintError("still shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "still shown")
}

func TestRenderRanking(t *testing.T) {
	out := RenderRanking([]pagerank.Ranked{
		{Rank: 1, AccountID: 783214, Score: 0.5, Share: 0.625},
		{Rank: 2, AccountID: 12, Score: 0.3, Share: 0.375},
	})

	assert.Contains(t, out, "ACCOUNT")
	assert.Contains(t, out, "783214")
	assert.Contains(t, out, "62.50%")
	assert.Contains(t, out, "Top 2")
	assert.NotContains(t, out, "TOP 2")
}

func TestStatusTrackerSummary(t *testing.T) {
	st := &StatusTracker{StartTime: time.Now().Add(-90 * time.Second), Initial: 1000}

	summary := st.Summary(2500)
	assert.Contains(t, summary, "2,500 accounts crawled")
	assert.Contains(t, summary, "1,500 new")
}

func TestPrintRankSummary(t *testing.T) {
	buf := captureOutput(t)

	PrintRankSummary(12345, 67890, pagerank.Convergence{Similarity: 0.99995, Iterations: 12}, 1500*time.Millisecond)
	assert.Contains(t, buf.String(), "12,345 accounts")
	assert.Contains(t, buf.String(), "67,890 links")
	assert.Contains(t, buf.String(), "12 iterations")
}

func TestSpinnerWithoutTerminal(t *testing.T) {
	// test binaries do not run with a terminal on stdout
	sp := StartSpinner("ranking")
	assert.NotPanics(t, func() { sp.Stop("ok") })
}

type recordingSender struct {
	titles   []string
	messages []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func TestNotifier(t *testing.T) {
	buf := captureOutput(t)
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender)

	n.CrawlFinished("3 accounts crawled (2 new) in 1s")
	n.CrawlStopped(errors.New("crawl failed: context canceled"))
	n.RankFinished("ranking.csv")

	assert.Contains(t, buf.String(), "[CRAWLED] 3 accounts crawled (2 new) in 1s")
	assert.Equal(t, []string{
		"followrank: crawl complete",
		"followrank: crawl stopped",
		"followrank: ranking complete",
	}, sender.titles)
	assert.Equal(t, "crawl failed: context canceled", sender.messages[1])
	assert.Equal(t, "Results written to ranking.csv", sender.messages[2])
}

func TestNotifierWithoutDesktop(t *testing.T) {
	captureOutput(t)

	var nilNotifier *Notifier
	assert.NotPanics(t, func() {
		NewNotifier(false).CrawlStopped(errors.New("boom"))
		nilNotifier.RankFinished("ranking.csv")
	})
}
