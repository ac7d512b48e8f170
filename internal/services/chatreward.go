package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type ChatRewardResult struct {
	Message        *types.Message `json:"message"`
	PointsAwarded  int            `json:"points_awarded"`
	Counted        bool           `json:"counted"`
	TodayChatCount int            `json:"today_chat_count"`
}

// messageRewardMetadata is stored in the message's jsonb metadata column.
type messageRewardMetadata struct {
	Counted       bool `json:"counted"`
	PointsAwarded int  `json:"points_awarded"`
}

// ChatRewardService persists a student's chat message and rewards
// substantive engagement. Persistence is unconditional; the reward applies
// only when the trimmed message reaches MeaningfulMinLength and the user is
// under the MaxMeaningfulPerDay cap, bounding chat-derived points at
// ChatPoints*MaxMeaningfulPerDay per day.
type ChatRewardService interface {
	RecordStudentMessage(ctx context.Context, userID, noteID uuid.UUID, content string, now time.Time) (*ChatRewardResult, error)
}

type chatRewardService struct {
	db        *gorm.DB
	log       *logger.Logger
	stats     StatsService
	statsRepo repos.UserStatsRepo
	sessions  repos.StudySessionRepo
	messages  repos.MessageRepo
	notes     repos.NoteRepo
}

func NewChatRewardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	statsService StatsService,
	statsRepo repos.UserStatsRepo,
	sessionRepo repos.StudySessionRepo,
	messageRepo repos.MessageRepo,
	noteRepo repos.NoteRepo,
) ChatRewardService {
	return &chatRewardService{
		db:        db,
		log:       baseLog.With("service", "ChatRewardService"),
		stats:     statsService,
		statsRepo: statsRepo,
		sessions:  sessionRepo,
		messages:  messageRepo,
		notes:     noteRepo,
	}
}

func (cs *chatRewardService) RecordStudentMessage(ctx context.Context, userID, noteID uuid.UUID, content string, now time.Time) (*ChatRewardResult, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("message content must not be empty")
	}

	todayDate := nptime.DayString(now)

	var result ChatRewardResult
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		notes, err := cs.notes.GetByIDs(ctx, tx, []uuid.UUID{noteID})
		if err != nil {
			return fmt.Errorf("load note: %w", err)
		}
		if len(notes) == 0 || notes[0] == nil {
			return fmt.Errorf("note not found")
		}

		stats, err := cs.stats.EnsureTodayCounters(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		counted := len([]rune(trimmed)) >= MeaningfulMinLength && stats.TodayChatCount < MaxMeaningfulPerDay
		awarded := 0
		if counted {
			awarded = ChatPoints
		}

		// The reward outcome rides along on the message row so the transcript
		// can show which questions counted.
		meta, err := json.Marshal(messageRewardMetadata{Counted: counted, PointsAwarded: awarded})
		if err != nil {
			return fmt.Errorf("marshal message metadata: %w", err)
		}

		message := &types.Message{
			ID:        uuid.New(),
			NoteID:    noteID,
			UserID:    userID,
			Role:      types.MessageRoleUser,
			Content:   content,
			Metadata:  datatypes.JSON(meta),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := cs.messages.Create(ctx, tx, []*types.Message{message}); err != nil {
			return fmt.Errorf("create message: %w", err)
		}

		if counted {
			stats.TotalPoints += ChatPoints
			stats.TodayChatCount++
			stats.UpdatedAt = now
			if err := cs.statsRepo.Save(ctx, tx, stats); err != nil {
				return fmt.Errorf("save user stats: %w", err)
			}

			session, err := cs.sessions.GetForUpdate(ctx, tx, userID, noteID, todayDate)
			if err != nil {
				return fmt.Errorf("load study session: %w", err)
			}
			if session == nil {
				session = &types.StudySession{
					ID:            uuid.New(),
					UserID:        userID,
					NoteID:        noteID,
					DayDate:       todayDate,
					PointsAwarded: ChatPoints,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := cs.sessions.Create(ctx, tx, session); err != nil {
					return fmt.Errorf("create study session: %w", err)
				}
			} else {
				session.PointsAwarded += ChatPoints
				session.UpdatedAt = now
				if err := cs.sessions.Save(ctx, tx, session); err != nil {
					return fmt.Errorf("save study session: %w", err)
				}
			}
		}

		result = ChatRewardResult{
			Message:        message,
			PointsAwarded:  awarded,
			Counted:        counted,
			TodayChatCount: stats.TodayChatCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
