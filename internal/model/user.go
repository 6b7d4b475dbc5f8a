package model

import "time"

type UserRole string

const (
	UserRoleLearner UserRole = "learner"
	UserRoleTutor   UserRole = "tutor"
	UserRoleAdmin   UserRole = "admin"
)

// User is read-only here. The ledger only looks users up to validate
// foreign references; accounts are managed by the surrounding system.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
