package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Folder struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Folder) TableName() string { return "folder" }

// Note is an uploaded PDF. Extraction and storage happen outside this
// service; only the storage key and basic metadata live here.
type Note struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course     *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	FolderID   *uuid.UUID     `gorm:"type:uuid;index" json:"folder_id,omitempty"`
	Folder     *Folder        `gorm:"constraint:OnDelete:SET NULL;foreignKey:FolderID;references:ID" json:"folder,omitempty"`
	UploaderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Title      string         `gorm:"not null;column:title" json:"title"`
	StorageKey string         `gorm:"not null;column:storage_key" json:"storage_key"`
	PageCount  int            `gorm:"not null;default:0;column:page_count" json:"page_count"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Note) TableName() string { return "note" }

type NoteCompletion struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_note_completion,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_note_completion,unique" json:"note_id"`
	Note      *Note     `gorm:"constraint:OnDelete:CASCADE;foreignKey:NoteID;references:ID" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (NoteCompletion) TableName() string { return "note_completion" }
