package types

import (
	"time"

	"github.com/google/uuid"
)

// UserStats is the per-user gamification row, upserted lazily on first
// activity. TotalPoints only ever grows; the Today* counters reset on the
// first write of each new Nepal calendar day, detected by comparing the day
// of UpdatedAt against the day of the incoming operation.
type UserStats struct {
	UserID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User               *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TotalPoints        int       `gorm:"not null;default:0;column:total_points" json:"total_points"`
	TodayActiveMinutes int       `gorm:"not null;default:0;column:today_active_minutes" json:"today_active_minutes"`
	TodayChatCount     int       `gorm:"not null;default:0;column:today_chat_count" json:"today_chat_count"`
	CurrentStreak      int       `gorm:"not null;default:0;column:current_streak" json:"current_streak"`
	LongestStreak      int       `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`
	LastStudyDate      string    `gorm:"column:last_study_date" json:"last_study_date"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserStats) TableName() string { return "user_stats" }
