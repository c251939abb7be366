package pagerank

import "slices"

// DefaultTeleportationRate replaces rates outside (0, 1)
const DefaultTeleportationRate = 0.1

// ClampTeleportationRate returns r when it lies in the open interval (0, 1)
// and DefaultTeleportationRate otherwise
func ClampTeleportationRate(r float64) float64 {
	if r > 0 && r < 1 {
		return r
	}
	return DefaultTeleportationRate
}

// Cell addresses one matrix entry. Row is the follower, Col the followed account.
type Cell struct {
	Row int
	Col int
}

type link struct {
	row    int
	weight float64
}

// Matrix is the sparse transition matrix of the random walk. Only link cells
// are stored; the teleport term is added when a cell is read.
type Matrix struct {
	n        int
	rate     float64
	teleport float64

	cells     map[Cell]float64
	rowCounts []int
	columns   [][]link
}

// NewTransitionMatrix builds and normalizes the matrix for g. After
// normalization every row with at least one link sums to 1 - rate.
func NewTransitionMatrix(g *Graph, rate float64) *Matrix {
	rate = ClampTeleportationRate(rate)
	n := g.Len()

	m := &Matrix{
		n:         n,
		rate:      rate,
		cells:     make(map[Cell]float64, g.Edges()),
		rowCounts: make([]int, n),
		columns:   make([][]link, n),
	}
	if n > 0 {
		m.teleport = rate / float64(n)
	}

	m.build(g)
	m.normalize()
	return m
}

func (m *Matrix) build(g *Graph) {
	for _, account := range g.accounts {
		col := g.index[account]
		for _, follower := range g.followers[account] {
			cell := Cell{Row: g.index[follower], Col: col}
			if _, ok := m.cells[cell]; ok {
				continue
			}
			m.cells[cell] = 1.0
			m.rowCounts[cell.Row]++
		}
	}
}

func (m *Matrix) normalize() {
	for cell := range m.cells {
		weight := (1 - m.rate) / float64(m.rowCounts[cell.Row])
		m.cells[cell] = weight
		m.columns[cell.Col] = append(m.columns[cell.Col], link{row: cell.Row, weight: weight})
	}

	// fixed summation order keeps results independent of map iteration
	for _, col := range m.columns {
		slices.SortFunc(col, func(a, b link) int { return a.row - b.row })
	}
}

// Len returns the dimension of the matrix
func (m *Matrix) Len() int {
	return m.n
}

// TeleportationRate returns the clamped rate the matrix was built with
func (m *Matrix) TeleportationRate() float64 {
	return m.rate
}

// Teleport returns the scalar added to every cell on read
func (m *Matrix) Teleport() float64 {
	return m.teleport
}

// Cell returns the stored link weight at (row, col), 0 when absent
func (m *Matrix) Cell(row, col int) float64 {
	return m.cells[Cell{Row: row, Col: col}]
}

// At returns the augmented transition probability from row to col
func (m *Matrix) At(row, col int) float64 {
	return m.teleport + m.cells[Cell{Row: row, Col: col}]
}

// RowCount returns the number of distinct links leaving row
func (m *Matrix) RowCount(row int) int {
	return m.rowCounts[row]
}

// RowLinkSum sums the stored link weights of row
func (m *Matrix) RowLinkSum(row int) float64 {
	var sum float64
	for cell, weight := range m.cells {
		if cell.Row == row {
			sum += weight
		}
	}
	return sum
}

// RowSum sums the augmented values of row across all columns
func (m *Matrix) RowSum(row int) float64 {
	return float64(m.n)*m.teleport + m.RowLinkSum(row)
}

// Links returns the number of stored cells
func (m *Matrix) Links() int {
	return len(m.cells)
}

// column computes the product of v with column j of the augmented matrix.
// total is the sum of v.
func (m *Matrix) column(v []float64, total float64, j int) float64 {
	sum := m.teleport * total
	for _, l := range m.columns[j] {
		sum += v[l.row] * l.weight
	}
	return sum
}
