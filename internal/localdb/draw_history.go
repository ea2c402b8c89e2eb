package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/types"
)

// SetupDrawHistoryTable creates the draw_history table.
func SetupDrawHistoryTable(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS draw_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			draw_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			winner_name TEXT NOT NULL,
			pool_size INTEGER NOT NULL,
			total_weight INTEGER NOT NULL,
			speed REAL NOT NULL DEFAULT 1,
			drawn_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		logger.Error("Failed to create draw_history table", zap.Error(err))
		return fmt.Errorf("failed to create draw_history table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_draw_history_drawn_at ON draw_history(drawn_at DESC)`); err != nil {
		logger.Warn("Failed to create draw_history index", zap.Error(err))
	}
	return nil
}

// SaveDrawRecord saves one resolved draw.
func SaveDrawRecord(rec types.DrawRecord) error {
	db := GetDB()
	if db == nil {
		return errDBNotInitialized
	}

	if rec.DrawnAt.IsZero() {
		rec.DrawnAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO draw_history (draw_id, mode, winner_name, pool_size, total_weight, speed, drawn_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.DrawID,
		rec.Mode,
		rec.WinnerName,
		rec.PoolSize,
		rec.TotalWeight,
		rec.Speed,
		rec.DrawnAt,
	)
	if err != nil {
		logger.Error("Failed to save draw record", zap.String("draw_id", rec.DrawID), zap.Error(err))
		return fmt.Errorf("failed to save draw record: %w", err)
	}
	return nil
}

// GetDrawHistory returns draws latest first. limit <= 0 returns everything.
func GetDrawHistory(limit int) ([]types.DrawRecord, error) {
	db := GetDB()
	if db == nil {
		return []types.DrawRecord{}, errDBNotInitialized
	}

	query := `
		SELECT id, draw_id, mode, winner_name, pool_size, total_weight, speed, drawn_at
		FROM draw_history
		ORDER BY drawn_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		logger.Error("Failed to get draw history", zap.Error(err))
		return []types.DrawRecord{}, fmt.Errorf("failed to get draw history: %w", err)
	}
	defer rows.Close()

	history := []types.DrawRecord{}
	for rows.Next() {
		var item types.DrawRecord
		if err := rows.Scan(
			&item.ID,
			&item.DrawID,
			&item.Mode,
			&item.WinnerName,
			&item.PoolSize,
			&item.TotalWeight,
			&item.Speed,
			&item.DrawnAt,
		); err != nil {
			logger.Error("Failed to scan draw history", zap.Error(err))
			continue
		}
		history = append(history, item)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error iterating draw history", zap.Error(err))
		return []types.DrawRecord{}, fmt.Errorf("failed to iterate draw history: %w", err)
	}
	return history, nil
}

// DeleteDrawHistory deletes one record by id.
func DeleteDrawHistory(id int) error {
	db := GetDB()
	if db == nil {
		return errDBNotInitialized
	}

	if _, err := db.Exec(`DELETE FROM draw_history WHERE id = ?`, id); err != nil {
		logger.Error("Failed to delete draw history", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete draw history: %w", err)
	}
	return nil
}

// ClearDrawHistory removes every record.
func ClearDrawHistory() error {
	db := GetDB()
	if db == nil {
		return errDBNotInitialized
	}

	if _, err := db.Exec(`DELETE FROM draw_history`); err != nil {
		logger.Error("Failed to clear draw history", zap.Error(err))
		return fmt.Errorf("failed to clear draw history: %w", err)
	}
	return nil
}

// HistoryRecorder stores resolved draws in draw_history.
type HistoryRecorder struct{}

func (HistoryRecorder) RecordDraw(rec types.DrawRecord) error {
	return SaveDrawRecord(rec)
}
