package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
)

const (
	fieldTrainerID         = "trainerId"
	fieldDateTime          = "dateTime"
	fieldCapacity          = "capacity"
	fieldPriceInPoints     = "priceInPoints"
	fieldParticipantsCount = "participantsCount"
	fieldTitle             = "title"
	fieldDescription       = "description"
)

type CreateSessionInput struct {
	TrainerID     string
	ScheduledAt   time.Time
	Capacity      int64
	PriceInPoints int64
	Title         string
	Description   string
}

type SessionRepository struct {
	store docstore.Store
}

func NewSessionRepository(store docstore.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	session := models.Session{
		ID:                uuid.NewString(),
		TrainerID:         input.TrainerID,
		ScheduledAt:       input.ScheduledAt.UTC(),
		Capacity:          input.Capacity,
		PriceInPoints:     input.PriceInPoints,
		ParticipantsCount: 0,
		CountRecorded:     true,
		Title:             input.Title,
		Description:       input.Description,
	}

	err := r.store.Commit(ctx, []docstore.Write{
		docstore.Create(SessionsCollection, session.ID, map[string]any{
			fieldTrainerID:         session.TrainerID,
			fieldDateTime:          session.ScheduledAt,
			fieldCapacity:          session.Capacity,
			fieldPriceInPoints:     session.PriceInPoints,
			fieldParticipantsCount: session.ParticipantsCount,
			fieldTitle:             session.Title,
			fieldDescription:       session.Description,
		}),
	}, nil)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*models.Session, error) {
	doc, err := r.store.Get(ctx, SessionsCollection, sessionID)
	if err != nil {
		return nil, err
	}
	session := sessionFromDocument(doc)
	return &session, nil
}

// ListUpcoming returns sessions scheduled at or after since, earliest first.
// Undated sessions are never upcoming.
func (r *SessionRepository) ListUpcoming(ctx context.Context, since time.Time) ([]models.Session, error) {
	q := docstore.Where(fieldDateTime, docstore.OpGreaterOrEqual, since.UTC()).Ordered(fieldDateTime)
	return r.list(ctx, q, true)
}

// List returns every session document, including undated ones.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	return r.list(ctx, docstore.Query{}, false)
}

func (r *SessionRepository) list(ctx context.Context, q docstore.Query, datedOnly bool) ([]models.Session, error) {
	docs, err := r.store.Query(ctx, SessionsCollection, q)
	if err != nil {
		return nil, err
	}
	sessions := make([]models.Session, 0, len(docs))
	for i := range docs {
		if datedOnly && !docs[i].Has(fieldDateTime) {
			continue
		}
		sessions = append(sessions, sessionFromDocument(&docs[i]))
	}
	return sessions, nil
}

func SetParticipantsCount(sessionID string, count int64) docstore.Write {
	return docstore.Update(SessionsCollection, sessionID, map[string]any{fieldParticipantsCount: count})
}

// ParticipantsUnchanged guards a commit on the participant count observed in session.
func ParticipantsUnchanged(session *models.Session) docstore.Precondition {
	if !session.CountRecorded {
		return docstore.FieldEquals(SessionsCollection, session.ID, fieldParticipantsCount, nil)
	}
	return docstore.FieldEquals(SessionsCollection, session.ID, fieldParticipantsCount, session.ParticipantsCount)
}

func sessionFromDocument(doc *docstore.Document) models.Session {
	return models.Session{
		ID:                doc.ID,
		TrainerID:         doc.String(fieldTrainerID),
		ScheduledAt:       doc.Time(fieldDateTime),
		Capacity:          doc.Int(fieldCapacity),
		PriceInPoints:     doc.Int(fieldPriceInPoints),
		ParticipantsCount: doc.Int(fieldParticipantsCount),
		Title:             doc.String(fieldTitle),
		Description:       doc.String(fieldDescription),
		CountRecorded:     doc.Has(fieldParticipantsCount),
	}
}
