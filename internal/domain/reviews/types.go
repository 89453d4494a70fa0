package reviews

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar-date format used for dateofpost.
const DateLayout = "2006-01-02"

const (
	MinRating     = 1
	MaxRating     = 5
	MaxNameLen    = 100
	MaxBodyLen    = 1000
	MinBodyLen    = 10
	DefaultRating = 5
)

type EventType string

const (
	EventWedding   EventType = "wedding"
	EventCorporate EventType = "corporate"
	EventParty     EventType = "party"
	EventSpecial   EventType = "special"
	EventOther     EventType = "other"
)

// ParseEventType maps free text to one of the known event types. Empty input
// yields party, anything unrecognised yields other.
func ParseEventType(s string) EventType {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return EventParty
	case EventWedding:
		return EventWedding
	case EventCorporate:
		return EventCorporate
	case EventParty:
		return EventParty
	case EventSpecial:
		return EventSpecial
	default:
		return EventOther
	}
}

// Review mirrors one row of the reviews sheet. Field names follow the sheet
// columns so the JSON shape is the one the site already consumes.
type Review struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StarCount  int       `json:"starcount"`
	EventType  EventType `json:"eventtype"`
	Review     string    `json:"review"`
	DateOfPost string    `json:"dateofpost"`
}

// Draft is a review as submitted by a visitor, before it has an id or date.
type Draft struct {
	Name      string    `json:"name" validate:"required,max=100"`
	StarCount int       `json:"starcount" validate:"min=1,max=5"`
	EventType EventType `json:"eventtype" validate:"required,oneof=wedding corporate party special other"`
	Review    string    `json:"review" validate:"required,min=10,max=1000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClampRating forces n into [MinRating, MaxRating].
func ClampRating(n int) int {
	if n < MinRating {
		return MinRating
	}
	if n > MaxRating {
		return MaxRating
	}
	return n
}

// FormatDate renders t as a UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Sanitize trims and truncates the text fields, clamps the rating and
// normalises the event type. The receiver is left untouched.
func (d Draft) Sanitize() Draft {
	return Draft{
		Name:      truncate(strings.TrimSpace(d.Name), MaxNameLen),
		StarCount: ClampRating(d.StarCount),
		EventType: ParseEventType(string(d.EventType)),
		Review:    truncate(strings.TrimSpace(d.Review), MaxBodyLen),
	}
}

// Validate reports the first problem with d as a *ValidationError.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()}
}

// ValidationError describes a draft rejected before any network call.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid review %s: failed %q", e.Field, e.Rule)
}

// Key is a stable message key for the failure, e.g. "review.name.required".
func (e *ValidationError) Key() string {
	rule := e.Rule
	if rule == "min" {
		rule = "too_short"
	}
	if rule == "max" {
		rule = "too_long"
	}
	return "review." + e.Field + "." + rule
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
