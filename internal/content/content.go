// Package content defines the typed references shared by every engagement record.
package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// Type identifies the kind of content an engagement, comment or registration points at
type Type string

const (
	TypeVideo   Type = "video"
	TypeNews    Type = "news"
	TypeEvent   Type = "event"
	TypeComment Type = "comment"
)

// Capabilities lists what users may do with a content type
type Capabilities struct {
	Likeable    bool
	Favoritable bool
	Commentable bool
	// Direct types may be engaged through the generic content routes. Comment
	// likes go through the comment service, which checks the comment exists.
	Direct bool
}

var capabilities = map[Type]Capabilities{
	TypeVideo:   {Likeable: true, Favoritable: true, Commentable: true, Direct: true},
	TypeNews:    {Likeable: true, Favoritable: true, Commentable: true, Direct: true},
	TypeEvent:   {Likeable: true, Favoritable: true, Commentable: true, Direct: true},
	TypeComment: {Likeable: true},
}

// Types returns every known content type in a stable order
func Types() []Type {
	return []Type{TypeVideo, TypeNews, TypeEvent, TypeComment}
}

// ParseType converts a wire value into a Type
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := capabilities[t]; !ok {
		return "", apperrors.NewValidationError("contentType", fmt.Sprintf("unknown content type %q", s))
	}
	return t, nil
}

// Valid reports whether t is one of the known types
func (t Type) Valid() bool {
	_, ok := capabilities[t]
	return ok
}

// Capabilities returns the capability row for t; unknown types can do nothing
func (t Type) Capabilities() Capabilities {
	return capabilities[t]
}

// Ref is the (id, type) pair identifying any likable, favoritable or commentable entity
type Ref struct {
	ID   uuid.UUID `json:"contentId"`
	Type Type      `json:"contentType"`
}

// NewRef builds a Ref
func NewRef(id uuid.UUID, t Type) Ref {
	return Ref{ID: id, Type: t}
}

// Validate checks that the reference is well formed
func (r Ref) Validate() error {
	if r.ID == uuid.Nil {
		return apperrors.NewValidationError("contentId", "content id is required")
	}
	if !r.Type.Valid() {
		return apperrors.NewValidationError("contentType", fmt.Sprintf("unknown content type %q", string(r.Type)))
	}
	return nil
}

func (r Ref) String() string {
	return string(r.Type) + ":" + r.ID.String()
}

// ParseRef builds a Ref from path parameters
func ParseRef(typ, id string) (Ref, error) {
	t, err := ParseType(typ)
	if err != nil {
		return Ref{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Ref{}, apperrors.NewValidationError("contentId", "content id must be a UUID")
	}
	ref := NewRef(parsed, t)
	return ref, ref.Validate()
}
