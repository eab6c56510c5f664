package models

import "time"

// Annotation is a user-authored note anchored to a document.
//
// References holds the ids of the thread ancestors, root first; an
// empty slice means the annotation is a top-level one. Group and
// Document are attached by the eager-load pass and may be nil when an
// annotation is handled outside of presentation.
type Annotation struct {
	ID         string
	UserID     string
	GroupPubid string
	Text       string
	Tags       []string
	References []string
	TargetURI  string
	Shared     bool
	Created    time.Time
	Updated    time.Time

	Group    *Group
	Document *Document
}

// IsReply reports whether the annotation is a reply within a thread.
func (a *Annotation) IsReply() bool {
	return len(a.References) > 0
}

// ThreadRoot returns the id of the thread's root annotation.
func (a *Annotation) ThreadRoot() string {
	if len(a.References) > 0 {
		return a.References[0]
	}

	return a.ID
}

// Document is the annotated web resource.
type Document struct {
	Title string
	URI   string
}
