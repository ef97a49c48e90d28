// Package form models the builder's UI state as an explicit view-model:
// a snapshot of the form fields plus the history selection, advanced by
// discrete events instead of ambient mutable session state.
package form

import (
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/utm"
)

const defaultBaseURL = "https://avisia.fr/"

// EventType enumerates the discrete state transitions the UI can emit.
type EventType string

const (
	EventFieldChanged   EventType = "field-changed"
	EventPresetClicked  EventType = "preset-clicked"
	EventExampleClicked EventType = "example-clicked"
	EventReset          EventType = "reset"
	EventSelectURL      EventType = "select-url"
	EventDeselectURL    EventType = "deselect-url"
	EventClearSelection EventType = "clear-selection"
)

// Field names accepted by field-changed and preset-clicked events.
const (
	FieldBaseURL  = "base_url"
	FieldSource   = "source"
	FieldMedium   = "medium"
	FieldCampaign = "campaign"
	FieldContent  = "content"
	FieldTerm     = "term"
)

type Event struct {
	Type  EventType `json:"type" binding:"required"`
	Field string    `json:"field,omitempty"`
	Value string    `json:"value,omitempty"`
}

// State is one immutable snapshot of the form. Reduce returns a fresh copy;
// callers never mutate a State they were handed.
type State struct {
	BaseURL  string `json:"base_url"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Content  string `json:"content"`
	Term     string `json:"term"`

	// Selected holds the final_url keys ticked in the history view for
	// bulk deletion.
	Selected map[string]struct{} `json:"selected"`
}

func DefaultState() State {
	return State{
		BaseURL:  defaultBaseURL,
		Selected: map[string]struct{}{},
	}
}

// CanGenerate reports whether the required fields are filled. The UI keeps
// generate/save disabled until this is true, so missing required fields
// never reach the store.
func (s State) CanGenerate() bool {
	return s.BaseURL != "" && s.Source != "" && s.Medium != "" && s.Campaign != ""
}

// PreviewURL composes the tracking URL for the current field values.
func (s State) PreviewURL() string {
	return utm.Compose(s.BaseURL, s.Source, s.Medium, s.Campaign, s.Content, s.Term)
}

// SelectedURLs returns the selection as a slice, for the delete request.
func (s State) SelectedURLs() []string {
	urls := make([]string, 0, len(s.Selected))
	for u := range s.Selected {
		urls = append(urls, u)
	}
	return urls
}

// Reduce applies one event and returns the next state. Unknown event types
// and unknown fields leave the state unchanged.
func Reduce(s State, e Event) State {
	next := s.clone()

	switch e.Type {
	case EventFieldChanged, EventPresetClicked:
		next.setField(e.Field, e.Value)
	case EventExampleClicked:
		if ex, ok := findExample(e.Value); ok {
			next.BaseURL = ex.BaseURL
			next.Source = ex.Source
			next.Medium = ex.Medium
			next.Campaign = ex.Campaign
			next.Content = ex.Content
			next.Term = ""
		}
	case EventReset:
		selected := next.Selected
		next = DefaultState()
		// reset clears the form, not the history selection
		next.Selected = selected
	case EventSelectURL:
		if e.Value != "" {
			next.Selected[e.Value] = struct{}{}
		}
	case EventDeselectURL:
		delete(next.Selected, e.Value)
	case EventClearSelection:
		next.Selected = map[string]struct{}{}
	}

	return next
}

func (s State) clone() State {
	next := s
	next.Selected = make(map[string]struct{}, len(s.Selected))
	for u := range s.Selected {
		next.Selected[u] = struct{}{}
	}
	return next
}

func (s *State) setField(field, value string) {
	switch field {
	case FieldBaseURL:
		s.BaseURL = value
	case FieldSource:
		s.Source = value
	case FieldMedium:
		s.Medium = value
	case FieldCampaign:
		s.Campaign = value
	case FieldContent:
		s.Content = value
	case FieldTerm:
		s.Term = value
	}
}

func findExample(name string) (models.Example, bool) {
	for _, ex := range models.Examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return models.Example{}, false
}
