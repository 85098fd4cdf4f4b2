package models

import (
	"fmt"

	"culturemap/internal/apperror"
)

// Kind tags the two moderated content variants.
type Kind string

const (
	KindPlace Kind = "place"
	KindEvent Kind = "event"
)

// ParseKind accepts "place"/"event" and the plural path forms.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "place", "places":
		return KindPlace, nil
	case "event", "events":
		return KindEvent, nil
	}
	return "", apperror.Invalid("kind", fmt.Sprintf("unknown content kind %q", s))
}

// Target identifies the content item an interaction applies to. Build it
// with NewTarget; the zero value is not a valid target.
type Target struct {
	Kind Kind `json:"kind"`
	ID   uint `json:"id"`
}

func NewTarget(kind string, id uint) (Target, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Target{}, apperror.Invalid("targetKind", fmt.Sprintf("unknown target kind %q", kind))
	}
	if id == 0 {
		return Target{}, apperror.Invalid("targetId", "must be a positive id")
	}
	return Target{Kind: k, ID: id}, nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// TargetRef is the wire form of a target. Exactly one of the three arms
// must be set: {targetKind,targetId}, {placeId} or {eventId}.
type TargetRef struct {
	TargetKind string `json:"targetKind"`
	TargetID   *uint  `json:"targetId"`
	PlaceID    *uint  `json:"placeId"`
	EventID    *uint  `json:"eventId"`
}

// Resolve validates the exactly-one-arm rule and returns the Target.
func (r TargetRef) Resolve() (Target, error) {
	arms := 0
	if r.TargetKind != "" || r.TargetID != nil {
		arms++
	}
	if r.PlaceID != nil {
		arms++
	}
	if r.EventID != nil {
		arms++
	}

	switch {
	case arms == 0:
		return Target{}, apperror.Invalid("target", "a place or an event is required")
	case arms > 1:
		return Target{}, apperror.Invalid("target", "exactly one of place or event must be given")
	case r.PlaceID != nil:
		return NewTarget(string(KindPlace), *r.PlaceID)
	case r.EventID != nil:
		return NewTarget(string(KindEvent), *r.EventID)
	}

	if r.TargetID == nil {
		return Target{}, apperror.Invalid("targetId", "is required")
	}
	return NewTarget(r.TargetKind, *r.TargetID)
}
