package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one turn of the tutoring transcript. User rows are written by
// the chat reward path, assistant rows by the tutor integration; neither
// mutates a row after creation.
type Message struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	NoteID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"note_id"`
	Note      *Note          `gorm:"constraint:OnDelete:CASCADE;foreignKey:NoteID;references:ID" json:"note,omitempty"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role      string         `gorm:"not null;column:role" json:"role"`
	Content   string         `gorm:"not null;column:content" json:"content"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Message) TableName() string { return "message" }
