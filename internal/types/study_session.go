package types

import (
	"time"

	"github.com/google/uuid"
)

// StudySession accumulates active seconds and attributed points for one
// user on one note on one Nepal calendar day. DayDate is a YYYY-MM-DD
// string; LastActivityAt is nil until the first accepted ping.
type StudySession struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_note_day,unique;index:idx_user_day" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	NoteID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_note_day,unique" json:"note_id"`
	Note           *Note      `gorm:"constraint:OnDelete:CASCADE;foreignKey:NoteID;references:ID" json:"note,omitempty"`
	DayDate        string     `gorm:"not null;index:idx_user_note_day,unique;index:idx_user_day;column:day_date" json:"day_date"`
	ActiveSeconds  int        `gorm:"not null;default:0;column:active_seconds" json:"active_seconds"`
	PointsAwarded  int        `gorm:"not null;default:0;column:points_awarded" json:"points_awarded"`
	LastActivityAt *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudySession) TableName() string { return "study_session" }
