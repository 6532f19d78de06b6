package auth

import (
	"github.com/loganlanou/campusconnect/internal/api"
)

// Role is the account kind the upstream assigns to a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// State is the outcome of resolving the current session.
type State int

const (
	// StateLoading means a shared fetch is still running and the caller
	// stopped waiting for it.
	StateLoading State = iota
	// StateFailed means the upstream could not be asked (network error,
	// 5xx, timeout). Nothing is known about the user.
	StateFailed
	// StateReady means the answer is known: User is set, or nil for a guest.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Session is the resolved identity of one browser
type Session struct {
	State State
	User  *api.User
	Err   error
}

func Loading() Session {
	return Session{State: StateLoading}
}

func Failed(err error) Session {
	return Session{State: StateFailed, Err: err}
}

func Ready(user *api.User) Session {
	return Session{State: StateReady, User: user}
}

// Anonymous is a resolved session with no user
func Anonymous() Session {
	return Ready(nil)
}

func (s Session) IsAuthenticated() bool {
	return s.State == StateReady && s.User != nil
}

func (s Session) IsVerified() bool {
	return s.IsAuthenticated() && s.User.IsVerified
}

// Role returns the user's role, or "" for guests and unresolved sessions
func (s Session) Role() Role {
	if !s.IsAuthenticated() {
		return ""
	}
	return Role(s.User.Role)
}

func (s Session) IsAdmin() bool {
	return s.Role() == RoleAdmin
}
