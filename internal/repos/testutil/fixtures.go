package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   "course",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedNote(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, uploaderID uuid.UUID) *types.Note {
	tb.Helper()
	n := &types.Note{
		ID:         uuid.New(),
		CourseID:   courseID,
		UploaderID: uploaderID,
		Title:      "note",
		StorageKey: "notes/" + uuid.New().String() + ".pdf",
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed note: %v", err)
	}
	return n
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) {
	tb.Helper()
	e := &types.Enrollment{
		ID:       uuid.New(),
		CourseID: courseID,
		UserID:   userID,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
}
