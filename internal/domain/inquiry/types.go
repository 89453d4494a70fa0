package inquiry

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Inquiry is a catering request from the contact page. SelectedItems is the
// pre-rendered cart selection.
type Inquiry struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Phone         string `json:"phone" validate:"required,phone"`
	EventDate     string `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	GuestCount    string `json:"guest_count" validate:"omitempty,numeric,max=6"`
	EventType     string `json:"event_type" validate:"max=50"`
	Message       string `json:"message" validate:"max=2000"`
	SelectedItems string `json:"-"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Validate is shared by every package that checks inquiries.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("phone", validatePhone)
	return v
}

// validatePhone is the "phone" validator rule: 7 to 15 digits with an
// optional leading "+", once separators are stripped.
func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(NormalizePhone(fl.Field().String()))
}

// NormalizePhone strips the spaces, dashes and brackets people type into
// phone fields.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (q Inquiry) Trimmed() Inquiry {
	return Inquiry{
		Name:          strings.TrimSpace(q.Name),
		Email:         strings.TrimSpace(q.Email),
		Phone:         strings.TrimSpace(q.Phone),
		EventDate:     strings.TrimSpace(q.EventDate),
		GuestCount:    strings.TrimSpace(q.GuestCount),
		EventType:     strings.TrimSpace(q.EventType),
		Message:       strings.TrimSpace(q.Message),
		SelectedItems: q.SelectedItems,
	}
}

func (q Inquiry) Validate() error {
	return Validate.Struct(q)
}
