package model

import (
	"time"

	"gorm.io/datatypes"
)

// RankingVisibilityKey is the setting row gating the student ranking view.
const RankingVisibilityKey = "rankingVisibility"

// SystemSetting represents a key-value pair for global application
// configuration. Value holds arbitrary JSON.
type SystemSetting struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (SystemSetting) TableName() string { return "system_settings" }

// RankingVisibility is the JSON shape stored under RankingVisibilityKey.
type RankingVisibility struct {
	IsRevealed bool `json:"isRevealed"`
}
