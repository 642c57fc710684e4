// Package domain defines the session model shared by the service layer and
// the persistence backends.
package domain

import (
	"fmt"
	"time"

	"mendel/pkg/genetics"
)

// EntitySession names the session entity in errors and change records.
const EntitySession = "session"

// Session scopes one user's work: the declared cross arity and the
// inheritance configuration the user adjusts between crosses. Computed
// crosses are never part of it.
type Session struct {
	ID          string                     `json:"id"`
	Arity       genetics.CrossArity        `json:"arity"`
	Inheritance genetics.InheritanceConfig `json:"inheritance"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

// Clone returns a copy whose inheritance map is not shared with s.
func (s Session) Clone() Session {
	s.Inheritance = s.Inheritance.Clone()
	if s.Inheritance == nil {
		s.Inheritance = genetics.InheritanceConfig{}
	}
	return s
}

// ErrSessionNotFound reports an unknown session identifier.
type ErrSessionNotFound struct {
	ID string
}

func (e ErrSessionNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", EntitySession, e.ID)
}
