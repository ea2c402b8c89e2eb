package localdb

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/types"
)

// SampleNames is the demo roster loaded by LoadSampleEntries.
var SampleNames = []string{
	"Anna", "Arthur", "Charlie", "Elena", "Emily", "Gareth", "Ian", "Isabela",
	"Laura", "Michael", "Rahul", "Sam I", "Sergi", "Tessa", "Xan",
}

// SetupEntriesTable はentriesテーブルを作成
func SetupEntriesTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		name TEXT PRIMARY KEY,
		weight INTEGER NOT NULL DEFAULT 1 CHECK (weight >= 1 AND weight <= 100),
		position INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		logger.Error("Failed to create entries table", zap.Error(err))
		return fmt.Errorf("failed to create entries table: %w", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertEntry(ex execer, name string, weight int) (bool, error) {
	res, err := ex.Exec(`
		INSERT OR IGNORE INTO entries (name, weight, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM entries))`,
		name, types.ClampWeight(weight))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddEntry appends a name to the pool. Blank names and duplicates are
// ignored; added reports whether a row was written.
func AddEntry(name string, weight int) (bool, error) {
	db := GetDB()
	if db == nil {
		return false, errDBNotInitialized
	}

	name = types.NormalizeName(name)
	if name == "" {
		return false, nil
	}

	added, err := insertEntry(db, name, weight)
	if err != nil {
		logger.Error("Failed to add entry", zap.String("name", name), zap.Error(err))
		return false, fmt.Errorf("failed to add entry: %w", err)
	}
	if added {
		logger.Debug("Entry added", zap.String("name", name), zap.Int("weight", types.ClampWeight(weight)))
	}
	return added, nil
}

// BulkAddEntries adds one name per line with weight 1 and returns how many
// new names were stored.
func BulkAddEntries(text string) (int, error) {
	db := GetDB()
	if db == nil {
		return 0, errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin bulk add: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, line := range strings.Split(text, "\n") {
		name := types.NormalizeName(line)
		if name == "" {
			continue
		}
		ok, err := insertEntry(tx, name, types.DefaultWeight)
		if err != nil {
			logger.Error("Failed to bulk add entry", zap.String("name", name), zap.Error(err))
			return 0, fmt.Errorf("failed to bulk add entries: %w", err)
		}
		if ok {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk add: %w", err)
	}
	logger.Info("Entries bulk added", zap.Int("added", added))
	return added, nil
}

// GetAllEntries returns the pool in insertion order.
func GetAllEntries() ([]types.Entry, error) {
	db := GetDB()
	if db == nil {
		return []types.Entry{}, errDBNotInitialized
	}

	rows, err := db.Query(`SELECT name, weight FROM entries ORDER BY position ASC`)
	if err != nil {
		logger.Error("Failed to get entries", zap.Error(err))
		return []types.Entry{}, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	entries := []types.Entry{}
	for rows.Next() {
		var e types.Entry
		if err := rows.Scan(&e.Name, &e.Weight); err != nil {
			logger.Error("Failed to scan entry", zap.Error(err))
			continue
		}
		e.Weight = types.ClampWeight(e.Weight)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return []types.Entry{}, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// UpdateEntryWeight sets a weight, clamped to [1, types.MaxWeight].
func UpdateEntryWeight(name string, weight int) (bool, error) {
	db := GetDB()
	if db == nil {
		return false, errDBNotInitialized
	}

	res, err := db.Exec(`UPDATE entries SET weight = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?`,
		types.ClampWeight(weight), types.NormalizeName(name))
	if err != nil {
		logger.Error("Failed to update entry weight", zap.String("name", name), zap.Error(err))
		return false, fmt.Errorf("failed to update entry weight: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveEntry deletes one name.
func RemoveEntry(name string) (bool, error) {
	db := GetDB()
	if db == nil {
		return false, errDBNotInitialized
	}

	res, err := db.Exec(`DELETE FROM entries WHERE name = ?`, types.NormalizeName(name))
	if err != nil {
		logger.Error("Failed to remove entry", zap.String("name", name), zap.Error(err))
		return false, fmt.Errorf("failed to remove entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ClearAllEntries empties the pool.
func ClearAllEntries() error {
	db := GetDB()
	if db == nil {
		return errDBNotInitialized
	}

	if _, err := db.Exec(`DELETE FROM entries`); err != nil {
		logger.Error("Failed to clear entries", zap.Error(err))
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	logger.Info("All entries cleared")
	return nil
}

// LoadSampleEntries appends the SampleNames missing from the pool.
// Existing entries and their weights are kept.
func LoadSampleEntries() error {
	_, err := BulkAddEntries(strings.Join(SampleNames, "\n"))
	return err
}

// EntryStore exposes the entries table as a draw pool source.
type EntryStore struct{}

func (EntryStore) Entries() ([]types.Entry, error) {
	return GetAllEntries()
}
