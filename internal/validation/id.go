package validation

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidID reports whether raw is a well-formed document identifier
// (a 24 character hex ObjectID). It says nothing about whether a
// document with that identifier exists.
func IsValidID(raw string) bool {
	return primitive.IsValidObjectID(raw)
}

// NewID returns a fresh document identifier in its hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// NormalizeID returns the canonical lowercase hex form of raw, so that
// every store sees the same key for one document. ok is false when raw
// is not well formed.
func NormalizeID(raw string) (id string, ok bool) {
	if !IsValidID(raw) {
		return "", false
	}
	return strings.ToLower(raw), true
}
