package models

import "time"

// Flag records that a user reported an annotation to the group's
// moderators. A user can flag a given annotation at most once.
type Flag struct {
	AnnotationID string
	UserID       string
	Created      time.Time
}
