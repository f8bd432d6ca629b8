package models

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleAdmin, RoleTrainer:
		return Role(value), true
	default:
		return "", false
	}
}

type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   Role   `json:"role"`
	Points int64  `json:"points"`
	// PointsRecorded is false for legacy documents without a points field;
	// their balance reads as 0.
	PointsRecorded bool `json:"-"`
}
