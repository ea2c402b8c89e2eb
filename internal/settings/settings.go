package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
)

type SettingType string

const (
	SettingTypeNormal SettingType = "normal"
	SettingTypeSecret SettingType = "secret"
)

const (
	KeyDrawMode         = "DRAW_MODE"
	KeyDrawSpeed        = "DRAW_SPEED"
	KeyWeightingEnabled = "WEIGHTING_ENABLED"
	KeyPublicURL        = "PUBLIC_URL"
)

var ErrUnknownSetting = errors.New("unknown setting key")

type Setting struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description"`
	UpdatedAt   time.Time   `json:"updated_at"`
	HasValue    bool        `json:"has_value"`
}

type SettingsManager struct {
	db *sql.DB
}

func NewSettingsManager(db *sql.DB) *SettingsManager {
	return &SettingsManager{db: db}
}

// 設定の定義
var DefaultSettings = map[string]Setting{
	// 抽選設定
	KeyDrawMode: {
		Key: KeyDrawMode, Value: string(reveal.ModeWheel), Type: SettingTypeNormal, Required: false,
		Description: "Reveal used when a draw is started without a mode",
	},
	KeyDrawSpeed: {
		Key: KeyDrawSpeed, Value: "1", Type: SettingTypeNormal, Required: false,
		Description: "Animation speed multiplier (0.1-10)",
	},
	KeyWeightingEnabled: {
		Key: KeyWeightingEnabled, Value: "true", Type: SettingTypeNormal, Required: false,
		Description: "Use entry weights when drawing",
	},

	// 表示設定
	KeyPublicURL: {
		Key: KeyPublicURL, Value: "", Type: SettingTypeNormal, Required: false,
		Description: "Public URL encoded into the share QR code",
	},
}

// CRUD操作
func (sm *SettingsManager) GetSetting(key string) (string, error) {
	var value string
	err := sm.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		// デフォルト値を返す
		if defaultSetting, exists := DefaultSettings[key]; exists {
			return defaultSetting.Value, nil
		}
		return "", fmt.Errorf("setting not found: %s", key)
	}
	return value, err
}

func (sm *SettingsManager) SetSetting(key, value string) error {
	defaultSetting, exists := DefaultSettings[key]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	_, err := sm.db.Exec(`
		INSERT INTO settings (key, value, setting_type, is_required, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		key, value,
		string(defaultSetting.Type),
		defaultSetting.Required,
		defaultSetting.Description,
	)
	if err != nil {
		logger.Error("Failed to save setting", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (sm *SettingsManager) GetAllSettings() (map[string]Setting, error) {
	rows, err := sm.db.Query(`
		SELECT key, value, setting_type, is_required, description, updated_at
		FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]Setting)
	for rows.Next() {
		var s Setting
		var settingType string
		var description sql.NullString
		if err := rows.Scan(&s.Key, &s.Value, &settingType, &s.Required, &description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Type = SettingType(settingType)
		s.Description = description.String
		s.HasValue = s.Value != ""
		settings[s.Key] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DBにない設定はデフォルト値で補完
	for key, defaultSetting := range DefaultSettings {
		if _, exists := settings[key]; !exists {
			defaultSetting.HasValue = defaultSetting.Value != ""
			settings[key] = defaultSetting
		}
	}

	return settings, nil
}

// DrawMode returns the stored default reveal, falling back to wheel on bad data.
func (sm *SettingsManager) DrawMode() reveal.Mode {
	value, err := sm.GetSetting(KeyDrawMode)
	if err != nil {
		return reveal.ModeWheel
	}
	mode, err := reveal.ParseMode(value)
	if err != nil {
		logger.Warn("Invalid stored draw mode", zap.String("value", value))
		return reveal.ModeWheel
	}
	return mode
}

func (sm *SettingsManager) DrawSpeed() float64 {
	value, err := sm.GetSetting(KeyDrawSpeed)
	if err != nil {
		return 1
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 1
	}
	return anim.ClampSpeed(speed)
}

func (sm *SettingsManager) WeightingEnabled() bool {
	value, err := sm.GetSetting(KeyWeightingEnabled)
	if err != nil {
		return true
	}
	return value != "false"
}

// 環境変数からの移行
func (sm *SettingsManager) MigrateFromEnv() error {
	migrated := 0

	for key := range DefaultSettings {
		// 既にDB設定が存在する場合はスキップ
		var existingKey string
		if err := sm.db.QueryRow("SELECT key FROM settings WHERE key = ?", key).Scan(&existingKey); err == nil {
			continue
		}

		envValue := os.Getenv(key)
		if envValue == "" {
			continue
		}
		if err := ValidateSetting(key, envValue); err != nil {
			logger.Warn("Ignoring invalid setting from environment", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := sm.SetSetting(key, envValue); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", key, err)
		}
		logger.Info("Migrated setting from environment", zap.String("key", key))
		migrated++
	}

	if migrated > 0 {
		logger.Info("Migration completed", zap.Int("migrated_count", migrated))
	}
	return nil
}

// バリデーション
func ValidateSetting(key, value string) error {
	switch key {
	case KeyDrawMode:
		if _, err := reveal.ParseMode(value); err != nil {
			return err
		}
	case KeyDrawSpeed:
		val, err := strconv.ParseFloat(value, 64)
		if err != nil || val < anim.MinSpeed || val > anim.MaxSpeed {
			return fmt.Errorf("must be a number between %g and %g", anim.MinSpeed, anim.MaxSpeed)
		}
	case KeyWeightingEnabled:
		if value != "true" && value != "false" {
			return fmt.Errorf("must be 'true' or 'false'")
		}
	case KeyPublicURL:
		if value != "" {
			u, err := url.Parse(value)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("must be an absolute URL")
			}
		}
	default:
		if _, exists := DefaultSettings[key]; !exists {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
		}
	}
	return nil
}

// 初期設定のセットアップ
func (sm *SettingsManager) InitializeDefaultSettings() error {
	for key, setting := range DefaultSettings {
		var existingKey string
		if err := sm.db.QueryRow("SELECT key FROM settings WHERE key = ?", key).Scan(&existingKey); err == nil {
			continue
		}

		if err := sm.SetSetting(key, setting.Value); err != nil {
			return fmt.Errorf("failed to initialize setting %s: %w", key, err)
		}
	}
	return nil
}
