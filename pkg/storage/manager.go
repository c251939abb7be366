package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const adjacencyExt = ".txt"

// Manager stores one adjacency file per crawled account.
// A file's existence marks the account as crawled.
type Manager struct {
	dir     string
	crawled map[int64]bool
	mu      sync.RWMutex
}

// NewManager creates the followers directory if needed and indexes existing files
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create followers directory: %w", err)
	}

	m := &Manager{
		dir:     dir,
		crawled: make(map[int64]bool),
	}

	ids, err := m.Accounts()
	if err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}
	for _, id := range ids {
		m.crawled[id] = true
	}

	return m, nil
}

// Dir returns the followers directory
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the adjacency file path for accountID
func (m *Manager) Path(accountID int64) string {
	return filepath.Join(m.dir, strconv.FormatInt(accountID, 10)+adjacencyExt)
}

// Exists reports whether accountID has already been crawled
func (m *Manager) Exists(accountID int64) bool {
	m.mu.RLock()
	known := m.crawled[accountID]
	m.mu.RUnlock()
	if known {
		return true
	}

	info, err := os.Stat(m.Path(accountID))
	if err != nil || info.IsDir() {
		return false
	}

	m.mu.Lock()
	m.crawled[accountID] = true
	m.mu.Unlock()
	return true
}

// SaveFollowers atomically writes the follower list of accountID.
// An empty list still produces a file so the account counts as crawled.
func (m *Manager) SaveFollowers(accountID int64, followers []int64) error {
	lines := make([]string, len(followers))
	for i, id := range followers {
		lines[i] = strconv.FormatInt(id, 10)
	}

	if err := WriteLines(m.Path(accountID), lines); err != nil {
		return fmt.Errorf("failed to save followers of %d: %w", accountID, err)
	}

	m.mu.Lock()
	m.crawled[accountID] = true
	m.mu.Unlock()
	return nil
}

// LoadFollowers reads the follower list of accountID. Blank lines are
// ignored; any unparsable line fails the whole file.
func (m *Manager) LoadFollowers(accountID int64) ([]int64, error) {
	lines, err := ReadLines(m.Path(accountID))
	if err != nil {
		return nil, err
	}

	followers := make([]int64, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid account id %q", m.Path(accountID), n+1, line)
		}
		followers = append(followers, id)
	}
	return followers, nil
}

// Accounts lists the account ids that have an adjacency file, ascending.
// Entries whose name is not "<id>.txt" are ignored.
func (m *Manager) Accounts() ([]int64, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read followers directory: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != adjacencyExt {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, adjacencyExt), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// CrawledCount returns the number of accounts known to be crawled
func (m *Manager) CrawledCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.crawled)
}
