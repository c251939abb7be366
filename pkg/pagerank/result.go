package pagerank

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
)

// Result is the final probability vector, indexed like the graph it came from
type Result struct {
	IDs         []int64
	Vector      []float64
	Convergence Convergence
}

// Ranked is one account's position in the ranking
type Ranked struct {
	Rank      int
	AccountID int64
	Score     float64
	// Share is Score divided by the total mass of the vector
	Share float64
}

// Score returns the score of id
func (r *Result) Score(id int64) (float64, bool) {
	i, ok := slices.BinarySearch(r.IDs, id)
	if !ok {
		return 0, false
	}
	return r.Vector[i], true
}

// Ranking orders accounts by descending score, ties by ascending id
func (r *Result) Ranking() []Ranked {
	var total float64
	for _, x := range r.Vector {
		total += x
	}

	ranked := make([]Ranked, len(r.IDs))
	for i, id := range r.IDs {
		ranked[i] = Ranked{AccountID: id, Score: r.Vector[i]}
		if total > 0 {
			ranked[i].Share = r.Vector[i] / total
		}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.AccountID < b.AccountID:
			return -1
		case a.AccountID > b.AccountID:
			return 1
		default:
			return 0
		}
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top returns the first n entries of the ranking, all of them when n <= 0
func (r *Result) Top(n int) []Ranked {
	ranked := r.Ranking()
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// WriteCSV writes the full ranking to path, replacing it atomically
func (r *Result) WriteCSV(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create ranking file: %w", err)
	}

	w := csv.NewWriter(file)
	_ = w.Write([]string{"rank", "account_id", "score", "share"})
	for _, entry := range r.Ranking() {
		_ = w.Write([]string{
			strconv.Itoa(entry.Rank),
			strconv.FormatInt(entry.AccountID, 10),
			strconv.FormatFloat(entry.Score, 'g', -1, 64),
			strconv.FormatFloat(entry.Share, 'f', 6, 64),
		})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write ranking: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close ranking file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ranking file: %w", err)
	}
	return nil
}
