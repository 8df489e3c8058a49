// Package entity defines the domain models for the startup feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLogo is used when a founder does not pick a logo glyph.
const DefaultLogo = "🚀"

// Startup is a founder's company listing in the directory.
type Startup struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Domain      string
	Stage       string
	Funding     string // free-form funding target, e.g. "$2M"
	Description string
	Tags        []string
	Logo        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields is the founder-editable part of a startup.
type Fields struct {
	Name        string
	Domain      string
	Stage       string
	Funding     string
	Description string
	Tags        []string
	Logo        string
}

// Filter narrows a directory search. Empty fields match everything.
type Filter struct {
	Query  string // matched against name, domain, description and tags
	Domain string
	Stage  string
}
