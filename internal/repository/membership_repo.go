package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
)

const (
	fieldSessionID       = "sessionId"
	fieldUserID          = "userId"
	fieldTimestampJoined = "timestampJoined"
)

type MembershipRepository struct {
	store docstore.Store
}

func NewMembershipRepository(store docstore.Store) *MembershipRepository {
	return &MembershipRepository{store: store}
}

// MembershipID is the composite document key that keeps memberships unique
// per (session, user) pair.
func MembershipID(sessionID, userID string) string {
	return sessionID + "_" + userID
}

func (r *MembershipRepository) Exists(ctx context.Context, sessionID, userID string) (bool, error) {
	_, err := r.store.Get(ctx, ParticipantsCollection, MembershipID(sessionID, userID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *MembershipRepository) ListBySessionID(ctx context.Context, sessionID string) ([]models.Membership, error) {
	return r.list(ctx, docstore.Where(fieldSessionID, docstore.OpEqual, sessionID).Ordered(fieldTimestampJoined))
}

func (r *MembershipRepository) List(ctx context.Context) ([]models.Membership, error) {
	return r.list(ctx, docstore.Query{})
}

func (r *MembershipRepository) list(ctx context.Context, q docstore.Query) ([]models.Membership, error) {
	docs, err := r.store.Query(ctx, ParticipantsCollection, q)
	if err != nil {
		return nil, err
	}
	memberships := make([]models.Membership, 0, len(docs))
	for i := range docs {
		memberships = append(memberships, models.Membership{
			ID:        docs[i].ID,
			SessionID: docs[i].String(fieldSessionID),
			UserID:    docs[i].String(fieldUserID),
			JoinedAt:  docs[i].Time(fieldTimestampJoined),
		})
	}
	return memberships, nil
}

// CreateMembership is a create-only write, so a concurrent duplicate join
// fails the whole commit.
func CreateMembership(sessionID, userID string, joinedAt time.Time) docstore.Write {
	return docstore.Create(ParticipantsCollection, MembershipID(sessionID, userID), map[string]any{
		fieldSessionID:       sessionID,
		fieldUserID:          userID,
		fieldTimestampJoined: joinedAt.UTC(),
	})
}

func MembershipAbsent(sessionID, userID string) docstore.Precondition {
	return docstore.NotExists(ParticipantsCollection, MembershipID(sessionID, userID))
}
