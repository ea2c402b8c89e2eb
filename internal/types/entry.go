package types

import (
	"strings"
	"time"
)

// DefaultWeight is assigned to entries created without an explicit weight.
const DefaultWeight = 1

// MaxWeight is the largest weight a single entry may carry.
const MaxWeight = 100

// Entry は抽選プールの1エントリ（名前と重み）
type Entry struct {
	Name   string `json:"name" db:"name"`
	Weight int    `json:"weight" db:"weight"`
}

// DrawRecord は1回分の抽選結果
type DrawRecord struct {
	ID          int       `json:"id" db:"id"`
	DrawID      string    `json:"draw_id" db:"draw_id"`
	Mode        string    `json:"mode" db:"mode"`
	WinnerName  string    `json:"winner_name" db:"winner_name"`
	PoolSize    int       `json:"pool_size" db:"pool_size"`
	TotalWeight int       `json:"total_weight" db:"total_weight"`
	Speed       float64   `json:"speed" db:"speed"`
	DrawnAt     time.Time `json:"drawn_at" db:"drawn_at"`
}

// NormalizeName trims surrounding whitespace from a name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ClampWeight keeps weights within [DefaultWeight, MaxWeight].
func ClampWeight(weight int) int {
	switch {
	case weight < DefaultWeight:
		return DefaultWeight
	case weight > MaxWeight:
		return MaxWeight
	}
	return weight
}

// Names returns the entry names in pool order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// IndexOf returns the position of name in entries, or -1.
func IndexOf(entries []Entry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}
