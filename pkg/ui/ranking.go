package ui

import (
	"fmt"
	"strconv"
	"time"

	"followrank/pkg/pagerank"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderRanking formats ranked accounts as a table
func RenderRanking(ranked []pagerank.Ranked) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatUpper
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"#", "Account", "Score", "Share"})
	for _, r := range ranked {
		tbl.AppendRow(table.Row{
			r.Rank,
			strconv.FormatInt(r.AccountID, 10),
			strconv.FormatFloat(r.Score, 'e', 4, 64),
			humanize.FormatFloat("#,###.##", r.Share*100) + "%",
		})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Top %d", len(ranked)), "", ""})
	return tbl.Render()
}

// PrintRanking prints the ranking table
func PrintRanking(ranked []pagerank.Ranked) {
	if IsQuietMode() || len(ranked) == 0 {
		return
	}
	fmt.Fprintln(output, RenderRanking(ranked))
}

// PrintRankSummary prints graph size and convergence of a ranking
func PrintRankSummary(nodes, edges int, conv pagerank.Convergence, elapsed time.Duration) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(output, "%s %s accounts • %s links • %d iterations • similarity %s • %s\n",
		Magenta("[RANKED]"),
		humanize.Comma(int64(nodes)),
		humanize.Comma(int64(edges)),
		conv.Iterations,
		strconv.FormatFloat(conv.Similarity, 'f', 6, 64),
		elapsed.Round(time.Millisecond),
	)
}
