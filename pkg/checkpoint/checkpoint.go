package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"followrank/pkg/frontier"
	"followrank/pkg/logger"
	"followrank/pkg/storage"
)

// Source tells where a starting set came from
type Source string

const (
	SourceCheckpoint Source = "checkpoint"
	SourceSeeds      Source = "seeds"
)

// Manager owns the checkpoint and seed files of a crawl
type Manager struct {
	checkpointPath string
	seedPath       string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager
func NewManager(checkpointPath, seedPath string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		checkpointPath: checkpointPath,
		seedPath:       seedPath,
		logger:         log.WithField("component", "checkpoint"),
	}
}

// Path returns the checkpoint file path
func (m *Manager) Path() string {
	return m.checkpointPath
}

// StartingSet returns the frontier the next run starts from: the checkpoint
// when it holds at least one valid entry, the seed file otherwise. Read
// failures other than a missing checkpoint are returned to the caller.
func (m *Manager) StartingSet() (*frontier.Frontier, Source, error) {
	f, err := m.Load()
	if err != nil {
		return nil, "", err
	}
	if f != nil && f.Len() > 0 {
		m.logger.WithField("entries", f.Len()).Info("Restarting from last checkpoint")
		return f, SourceCheckpoint, nil
	}

	seeds, err := m.LoadSeeds()
	if err != nil {
		return nil, "", err
	}
	m.logger.WithField("entries", seeds.Len()).Info("Starting with seed set")
	return seeds, SourceSeeds, nil
}

// Load reads the checkpoint. It returns nil without error when no checkpoint exists.
// Malformed lines are logged and skipped.
func (m *Manager) Load() (*frontier.Frontier, error) {
	lines, err := storage.ReadLines(m.checkpointPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	f := frontier.New()
	skipped := 0
	for n, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := frontier.ParseEntry(line)
		if err != nil {
			skipped++
			m.logger.WithError(err).WithField("line", n+1).Warn("Skipping malformed checkpoint line")
			continue
		}
		f.PushBack(entry)
	}

	if skipped > 0 && f.Len() == 0 {
		m.logger.WithField("skipped", skipped).Warn("Checkpoint has no valid entries")
	}
	return f, nil
}

// LoadSeeds reads the seed file as a level 0 frontier.
// Blank lines are ignored; unparsable ids are logged and skipped.
func (m *Manager) LoadSeeds() (*frontier.Frontier, error) {
	lines, err := storage.ReadLines(m.seedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	ids := make([]int64, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			m.logger.WithFields(map[string]interface{}{
				"line":  n + 1,
				"value": line,
			}).Warn("Skipping invalid seed id")
			continue
		}
		ids = append(ids, id)
	}
	return frontier.FromSeeds(ids), nil
}

// Save atomically replaces the checkpoint with the pending entries of f
func (m *Manager) Save(f *frontier.Frontier) error {
	if err := storage.WriteLines(m.checkpointPath, f.Lines()); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"entries": f.Len(),
		"path":    m.checkpointPath,
	})
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.checkpointPath)
	return err == nil && !info.IsDir()
}
