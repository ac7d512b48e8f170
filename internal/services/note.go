package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/requestdata"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// NoteService is pass-through CRUD for uploaded PDF notes, plus the
// idempotent completion marker consumed by the weekly leaderboard. Upload
// and text extraction happen in external services; only metadata lands
// here.
type NoteService interface {
	CreateNote(ctx context.Context, courseID uuid.UUID, folderID *uuid.UUID, title, storageKey string, pageCount int) (*types.Note, error)
	GetCourseNotes(ctx context.Context, courseID uuid.UUID) ([]*types.Note, error)
	GetNote(ctx context.Context, noteID uuid.UUID) (*types.Note, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID) error
	// MarkCompleted records that the caller finished the note. Completing the
	// same note twice is a no-op.
	MarkCompleted(ctx context.Context, noteID uuid.UUID, now time.Time) error
}

type noteService struct {
	db             *gorm.DB
	log            *logger.Logger
	noteRepo       repos.NoteRepo
	folderRepo     repos.FolderRepo
	completionRepo repos.NoteCompletionRepo
	courses        CourseService
}

func NewNoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	noteRepo repos.NoteRepo,
	folderRepo repos.FolderRepo,
	completionRepo repos.NoteCompletionRepo,
	courseService CourseService,
) NoteService {
	return &noteService{
		db:             db,
		log:            baseLog.With("service", "NoteService"),
		noteRepo:       noteRepo,
		folderRepo:     folderRepo,
		completionRepo: completionRepo,
		courses:        courseService,
	}
}

func (ns *noteService) CreateNote(ctx context.Context, courseID uuid.UUID, folderID *uuid.UUID, title, storageKey string, pageCount int) (*types.Note, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("note title is required")
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	if _, err := ns.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if folderID != nil && *folderID != uuid.Nil {
		folders, err := ns.folderRepo.GetByIDs(ctx, nil, []uuid.UUID{*folderID})
		if err != nil {
			return nil, fmt.Errorf("load folder: %w", err)
		}
		if len(folders) == 0 || folders[0].CourseID != courseID {
			return nil, fmt.Errorf("folder not found in course")
		}
	}

	now := time.Now().UTC()
	note := &types.Note{
		ID:         uuid.New(),
		CourseID:   courseID,
		FolderID:   folderID,
		UploaderID: rd.UserID,
		Title:      title,
		StorageKey: storageKey,
		PageCount:  pageCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := ns.noteRepo.Create(ctx, nil, []*types.Note{note}); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (ns *noteService) GetCourseNotes(ctx context.Context, courseID uuid.UUID) ([]*types.Note, error) {
	if _, err := ns.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return ns.noteRepo.GetByCourse(ctx, nil, courseID)
}

func (ns *noteService) GetNote(ctx context.Context, noteID uuid.UUID) (*types.Note, error) {
	notes, err := ns.noteRepo.GetByIDs(ctx, nil, []uuid.UUID{noteID})
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	if len(notes) == 0 || notes[0] == nil {
		return nil, fmt.Errorf("note not found")
	}
	note := notes[0]
	if _, err := ns.courses.GetCourse(ctx, note.CourseID); err != nil {
		return nil, fmt.Errorf("note not found")
	}
	return note, nil
}

func (ns *noteService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	notes, err := ns.noteRepo.GetByIDs(ctx, nil, []uuid.UUID{noteID})
	if err != nil {
		return fmt.Errorf("load note: %w", err)
	}
	if len(notes) == 0 || notes[0].UploaderID != rd.UserID {
		return fmt.Errorf("note not found")
	}
	return ns.noteRepo.Delete(ctx, nil, noteID)
}

func (ns *noteService) MarkCompleted(ctx context.Context, noteID uuid.UUID, now time.Time) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	if _, err := ns.GetNote(ctx, noteID); err != nil {
		return err
	}
	return ns.completionRepo.Create(ctx, nil, &types.NoteCompletion{
		ID:        uuid.New(),
		UserID:    rd.UserID,
		NoteID:    noteID,
		CreatedAt: now,
	})
}
