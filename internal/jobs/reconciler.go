package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/repository"
)

// Report summarises one audit pass over the training data.
type Report struct {
	Sessions         int
	Memberships      int
	Accounts         int
	CountMismatches  int
	OverCapacity     int
	NegativeBalances int
}

func (r Report) Healthy() bool {
	return r.CountMismatches == 0 && r.OverCapacity == 0 && r.NegativeBalances == 0
}

// Reconciler audits stored counters against the membership records. It never
// writes; drift is reported for an operator to resolve.
type Reconciler struct {
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	memberships *repository.MembershipRepository
	log         zerolog.Logger
}

func NewReconciler(store docstore.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		users:       repository.NewUserRepository(store),
		sessions:    repository.NewSessionRepository(store),
		memberships: repository.NewMembershipRepository(store),
		log:         log.With().Str("component", "reconciler").Logger(),
	}
}

func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report

	sessions, err := r.sessions.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list sessions: %w", err)
	}
	memberships, err := r.memberships.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list memberships: %w", err)
	}
	accounts, err := r.users.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list accounts: %w", err)
	}

	report.Sessions = len(sessions)
	report.Memberships = len(memberships)
	report.Accounts = len(accounts)

	counted := make(map[string]int64, len(sessions))
	for _, membership := range memberships {
		counted[membership.SessionID]++
	}

	for _, session := range sessions {
		if actual := counted[session.ID]; actual != session.ParticipantsCount {
			report.CountMismatches++
			r.log.Warn().
				Str("session_id", session.ID).
				Int64("participants_count", session.ParticipantsCount).
				Int64("memberships", actual).
				Msg("participant count drift")
		}
		if session.ParticipantsCount > session.Capacity {
			report.OverCapacity++
			r.log.Warn().
				Str("session_id", session.ID).
				Int64("participants_count", session.ParticipantsCount).
				Int64("capacity", session.Capacity).
				Msg("session over capacity")
		}
	}

	for _, account := range accounts {
		if account.Points < 0 {
			report.NegativeBalances++
			r.log.Warn().Str("user_id", account.ID).Int64("points", account.Points).Msg("negative balance")
		}
	}

	event := r.log.Info()
	if !report.Healthy() {
		event = r.log.Warn()
	}
	event.
		Int("sessions", report.Sessions).
		Int("memberships", report.Memberships).
		Int("accounts", report.Accounts).
		Int("count_mismatches", report.CountMismatches).
		Int("over_capacity", report.OverCapacity).
		Int("negative_balances", report.NegativeBalances).
		Msg("reconciliation finished")

	return report, nil
}
