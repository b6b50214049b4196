package models

import "time"

// Level represents the difficulty label of a tutorial
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Default values substituted for absent tutorial fields
const (
	DefaultTitle       = "Untitled"
	DefaultLevel       = string(LevelBeginner)
	DefaultDuration    = "30 min"
	DefaultLanguage    = "python"
	PlaceholderContent = "<p>No content available</p>"
)

// Source tells which store answered a read
type Source string

const (
	SourceDatabase Source = "database"
	SourceMirror   Source = "mirror"
)

// Availability is the state reported by the connection supervisor
type Availability int

const (
	Unavailable Availability = iota
	Available
)

// String returns a human readable availability
func (a Availability) String() string {
	if a == Available {
		return "connected"
	}
	return "disconnected"
}

// Tutorial represents a tutorial record as seen by the rest of the application
type Tutorial struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       string     `json:"level"`
	Duration    string     `json:"duration"`
	Language    string     `json:"language"`
	Content     string     `json:"content"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// WithDefaults returns a copy of the tutorial with every empty field replaced by its default.
// Content receives the placeholder, so the result is safe to hand to a renderer.
func (t Tutorial) WithDefaults() Tutorial {
	if t.Title == "" {
		t.Title = DefaultTitle
	}
	if t.Level == "" {
		t.Level = DefaultLevel
	}
	if t.Duration == "" {
		t.Duration = DefaultDuration
	}
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	if t.Content == "" {
		t.Content = PlaceholderContent
	}
	return t
}

// CreateTutorialRequest represents a request to create a tutorial
type CreateTutorialRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Duration    string `json:"duration"`
	Language    string `json:"language"`
	Content     string `json:"content"`
}

// UpdateTutorialRequest represents a request to update a tutorial (partial update)
type UpdateTutorialRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Level       *string `json:"level,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Language    *string `json:"language,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// Apply merges the non-nil fields of the request over the given tutorial
func (r *UpdateTutorialRequest) Apply(t *Tutorial) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Level != nil {
		t.Level = *r.Level
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
	}
	if r.Language != nil {
		t.Language = *r.Language
	}
	if r.Content != nil {
		t.Content = *r.Content
	}
}

// HealthStatus represents the availability of both stores
type HealthStatus struct {
	Status       string    `json:"status"`
	Database     string    `json:"database"`
	JSONFallback string    `json:"jsonFallback"`
	Timestamp    time.Time `json:"timestamp"`
}
