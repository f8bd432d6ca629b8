package models

import "time"

type Session struct {
	ID                string    `json:"id"`
	TrainerID         string    `json:"trainer_id"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	Capacity          int64     `json:"capacity"`
	PriceInPoints     int64     `json:"price_in_points"`
	ParticipantsCount int64     `json:"participants_count"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	// CountRecorded is false for documents written before participantsCount existed.
	CountRecorded bool `json:"-"`
}

func (s *Session) Full() bool {
	return s.ParticipantsCount >= s.Capacity
}

// SessionListing is a session enriched with its trainer's contact details.
type SessionListing struct {
	Session
	TrainerName  string `json:"trainer_name"`
	TrainerEmail string `json:"trainer_email"`
}

type Membership struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Participant struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type JoinResult struct {
	SessionID         string `json:"session_id"`
	UserID            string `json:"user_id"`
	Points            int64  `json:"points"`
	ParticipantsCount int64  `json:"participants_count"`
	Attempts          int    `json:"attempts"`
}
