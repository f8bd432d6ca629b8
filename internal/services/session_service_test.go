package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore/memstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
)

func TestCreateSessionRequiresTrainerOrAdmin(t *testing.T) {
	service := NewSessionService(memstore.New(), nil, testLogger)
	_, err := service.CreateSession(context.Background(), "u1", models.RoleUser, CreateSessionInput{
		Title:       "Yoga",
		ScheduledAt: testNow,
		Capacity:    10,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateSessionValidatesInput(t *testing.T) {
	service := NewSessionService(memstore.New(), nil, testLogger)
	valid := CreateSessionInput{Title: "Yoga", ScheduledAt: testNow, Capacity: 10, PriceInPoints: 5}

	tests := []struct {
		name   string
		mutate func(*CreateSessionInput)
	}{
		{name: "missing title", mutate: func(in *CreateSessionInput) { in.Title = "  " }},
		{name: "zero capacity", mutate: func(in *CreateSessionInput) { in.Capacity = 0 }},
		{name: "negative price", mutate: func(in *CreateSessionInput) { in.PriceInPoints = -1 }},
		{name: "missing time", mutate: func(in *CreateSessionInput) { in.ScheduledAt = time.Time{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := service.CreateSession(context.Background(), "t1", models.RoleTrainer, input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateSessionAssignsTrainer(t *testing.T) {
	store := memstore.New()
	service := NewSessionService(store, nil, testLogger)

	own, err := service.CreateSession(context.Background(), "t1", models.RoleTrainer, CreateSessionInput{
		TrainerID:   "someone-else",
		Title:       "Spinning",
		ScheduledAt: testNow,
		Capacity:    12,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if own.TrainerID != "t1" || own.ParticipantsCount != 0 || own.ID == "" {
		t.Fatalf("unexpected session %+v", own)
	}
	if got := participantsOf(t, store, own.ID); got != 0 {
		t.Fatalf("expected stored participantsCount 0, got %d", got)
	}

	delegated, err := service.CreateSession(context.Background(), "a1", models.RoleAdmin, CreateSessionInput{
		TrainerID:   "t2",
		Title:       "Boxing",
		ScheduledAt: testNow,
		Capacity:    8,
	})
	if err != nil {
		t.Fatalf("CreateSession as admin: %v", err)
	}
	if delegated.TrainerID != "t2" {
		t.Fatalf("expected admin to assign trainer t2, got %q", delegated.TrainerID)
	}
}

func TestListUpcomingEnrichesTrainer(t *testing.T) {
	store := memstore.New()
	seedAccount(t, store, "t1", "coach@gym.test", 0)
	service := NewSessionService(store, nil, testLogger)

	create := func(trainerID, title string, at time.Time) {
		t.Helper()
		_, err := service.CreateSession(context.Background(), trainerID, models.RoleTrainer, CreateSessionInput{
			Title:       title,
			ScheduledAt: at,
			Capacity:    5,
		})
		if err != nil {
			t.Fatalf("CreateSession %s: %v", title, err)
		}
	}
	create("t1", "later", testNow.Add(48*time.Hour))
	create("t1", "past", testNow.Add(-time.Hour))
	create("gone", "sooner", testNow.Add(time.Hour))

	listings, err := service.ListUpcoming(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 upcoming sessions, got %d", len(listings))
	}
	if listings[0].Title != "sooner" || listings[0].TrainerName != unknownTrainer || listings[0].TrainerEmail != "" {
		t.Fatalf("unexpected first listing %+v", listings[0])
	}
	if listings[1].Title != "later" || listings[1].TrainerName != "Member t1" || listings[1].TrainerEmail != "coach@gym.test" {
		t.Fatalf("unexpected second listing %+v", listings[1])
	}
}

func TestListParticipantsResolvesEmails(t *testing.T) {
	store := memstore.New()
	seedAccount(t, store, "u1", "ana@gym.test", 10)
	seedSession(t, store, "s1", "t1", 5, 0, 0)

	joins := NewJoinCoordinator(store, nil, 0, testLogger)
	for _, uid := range []string{"u1", "ghost"} {
		if _, err := joins.Join(context.Background(), "s1", uid); err != nil {
			t.Fatalf("Join %s: %v", uid, err)
		}
	}

	service := NewSessionService(store, nil, testLogger)
	participants, err := service.ListParticipants(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	emails := map[string]string{}
	for _, p := range participants {
		emails[p.UserID] = p.Email
	}
	if len(emails) != 2 || emails["u1"] != "ana@gym.test" || emails["ghost"] != "ghost" {
		t.Fatalf("unexpected participants %+v", participants)
	}

	if _, err := service.ListParticipants(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
