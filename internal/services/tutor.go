package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

const tutorSystemPrompt = "You are a patient study tutor. Answer questions about the student's " +
	"uploaded notes concisely, in markdown, and encourage them to reason through problems themselves."

const tutorHistoryLimit = 20

// TutorService produces the assistant side of the transcript. The model
// call runs outside any database transaction; when no AI client is
// configured the tutor is simply disabled.
type TutorService interface {
	Respond(ctx context.Context, userID, noteID uuid.UUID) (*types.Message, error)
}

type tutorService struct {
	db       *gorm.DB
	log      *logger.Logger
	messages repos.MessageRepo
	ai       AIClient
}

func NewTutorService(db *gorm.DB, baseLog *logger.Logger, messageRepo repos.MessageRepo, ai AIClient) TutorService {
	return &tutorService{
		db:       db,
		log:      baseLog.With("service", "TutorService"),
		messages: messageRepo,
		ai:       ai,
	}
}

func (ts *tutorService) Respond(ctx context.Context, userID, noteID uuid.UUID) (*types.Message, error) {
	if ts.ai == nil {
		return nil, nil
	}

	history, err := ts.messages.GetByNoteForUser(ctx, nil, noteID, userID, tutorHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no transcript to respond to")
	}

	aiMessages := make([]AIMessage, 0, len(history)+1)
	aiMessages = append(aiMessages, AIMessage{Role: "system", Content: tutorSystemPrompt})
	for _, m := range history {
		aiMessages = append(aiMessages, AIMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := ts.ai.Chat(ctx, aiMessages)
	if err != nil {
		return nil, fmt.Errorf("tutor completion: %w", err)
	}

	now := time.Now().UTC()
	message := &types.Message{
		ID:        uuid.New(),
		NoteID:    noteID,
		UserID:    userID,
		Role:      types.MessageRoleAssistant,
		Content:   reply,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ts.messages.Create(ctx, nil, []*types.Message{message}); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}
	return message, nil
}
