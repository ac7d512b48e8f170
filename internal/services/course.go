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

// CourseService is pass-through CRUD with ownership checks; it carries no
// gamification logic.
type CourseService interface {
	CreateCourse(ctx context.Context, title, description, subject string) (*types.Course, error)
	GetMyCourses(ctx context.Context) ([]*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
	Enroll(ctx context.Context, courseID uuid.UUID) error
	CreateFolder(ctx context.Context, courseID uuid.UUID, name string) (*types.Folder, error)
	GetFolders(ctx context.Context, courseID uuid.UUID) ([]*types.Folder, error)
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	folderRepo     repos.FolderRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	folderRepo repos.FolderRepo,
	enrollmentRepo repos.EnrollmentRepo,
) CourseService {
	return &courseService{
		db:             db,
		log:            baseLog.With("service", "CourseService"),
		courseRepo:     courseRepo,
		folderRepo:     folderRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (cs *courseService) CreateCourse(ctx context.Context, title, description, subject string) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("course title is required")
	}

	now := time.Now().UTC()
	course := &types.Course{
		ID:          uuid.New(),
		OwnerID:     rd.UserID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Subject:     strings.TrimSpace(subject),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) GetMyCourses(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}

	owned, err := cs.courseRepo.GetByOwner(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load owned courses: %w", err)
	}

	enrollments, err := cs.enrollmentRepo.GetByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	enrolledIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		enrolledIDs = append(enrolledIDs, e.CourseID)
	}
	enrolled, err := cs.courseRepo.GetByIDs(ctx, nil, enrolledIDs)
	if err != nil {
		return nil, fmt.Errorf("load enrolled courses: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(owned))
	results := make([]*types.Course, 0, len(owned)+len(enrolled))
	for _, c := range owned {
		seen[c.ID] = true
		results = append(results, c)
	}
	for _, c := range enrolled {
		if !seen[c.ID] {
			results = append(results, c)
		}
	}
	return results, nil
}

func (cs *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	course, err := cs.loadAccessibleCourse(ctx, courseID, rd.UserID)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *courseService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || courses[0].OwnerID != rd.UserID {
		return fmt.Errorf("course not found")
	}
	return cs.courseRepo.Delete(ctx, nil, courseID)
}

func (cs *courseService) Enroll(ctx context.Context, courseID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return fmt.Errorf("course not found")
	}
	return cs.enrollmentRepo.Create(ctx, nil, []*types.Enrollment{{
		ID:        uuid.New(),
		CourseID:  courseID,
		UserID:    rd.UserID,
		CreatedAt: time.Now().UTC(),
	}})
}

func (cs *courseService) CreateFolder(ctx context.Context, courseID uuid.UUID, name string) (*types.Folder, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || courses[0].OwnerID != rd.UserID {
		return nil, fmt.Errorf("course not found")
	}

	now := time.Now().UTC()
	folder := &types.Folder{
		ID:        uuid.New(),
		CourseID:  courseID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := cs.folderRepo.Create(ctx, nil, []*types.Folder{folder}); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

func (cs *courseService) GetFolders(ctx context.Context, courseID uuid.UUID) ([]*types.Folder, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if _, err := cs.loadAccessibleCourse(ctx, courseID, rd.UserID); err != nil {
		return nil, err
	}
	return cs.folderRepo.GetByCourse(ctx, nil, courseID)
}

// loadAccessibleCourse returns the course when the user owns it or is
// enrolled in it.
func (cs *courseService) loadAccessibleCourse(ctx context.Context, courseID, userID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course not found")
	}
	course := courses[0]
	if course.OwnerID == userID {
		return course, nil
	}
	enrolled, err := cs.enrollmentRepo.Exists(ctx, nil, courseID, userID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, fmt.Errorf("course not found")
	}
	return course, nil
}
