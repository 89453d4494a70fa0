// Package whatsapp builds wa.me deep links that open a pre-filled catering
// inquiry in the visitor's WhatsApp client. Delivery is never confirmed.
package whatsapp

import (
	"net/url"
	"strings"
	"text/template"

	"festive/internal/domain/inquiry"
	"festive/internal/i18n"
)

const DefaultNumber = "+916382031932"

var templates = map[i18n.Lang]*template.Template{
	i18n.English: template.Must(template.New("en").Parse(`🍽️ *FESTIVE FEAST CATERING - NEW INQUIRY* 🍽️

📋 *Customer Details:*
👤 Name: {{.Name}}
📞 Phone: {{.Phone}}
📧 Email: {{.Email}}

🎉 *Event Details:*
📅 Event Date: {{.EventDate}}
👥 Guest Count: {{.GuestCount}}
🎪 Event Type: {{.EventType}}

🛒 *Selected Items:*
{{.SelectedItems}}

💬 *Additional Message:*
{{.Message}}

---
*Generated from Festive Feast Catering Website*`)),

	i18n.Tamil: template.Must(template.New("ta").Parse(`🍽️ *பண்டிகை விருந்து கேட்டரிங் - புதிய விசாரணை* 🍽️

📋 *வாடிக்கையாளர் விவரங்கள்:*
👤 பெயர்: {{.Name}}
📞 தொலைபேசி: {{.Phone}}
📧 மின்னஞ்சல்: {{.Email}}

🎉 *நிகழ்வு விவரங்கள்:*
📅 நிகழ்வு தேதி: {{.EventDate}}
👥 விருந்தினர் எண்ணிக்கை: {{.GuestCount}}
🎪 நிகழ்வு வகை: {{.EventType}}

🛒 *தேர்ந்தெடுக்கப்பட்ட உணவுகள்:*
{{.SelectedItems}}

💬 *கூடுதல் செய்தி:*
{{.Message}}

---
*பண்டிகை விருந்து கேட்டரிங் இணையதளத்தில் இருந்து உருவாக்கப்பட்டது*`)),
}

type Service struct {
	number string
}

// New returns a Service that links to number. Any "+" or spaces are
// stripped since wa.me wants bare digits.
func New(number string) *Service {
	if strings.TrimSpace(number) == "" {
		number = DefaultNumber
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return &Service{number: digits}
}

// FormatMessage renders the inquiry in lang, filling blank optional fields
// with the localized defaults.
func (s *Service) FormatMessage(q inquiry.Inquiry, lang i18n.Lang) (string, error) {
	tmpl, ok := templates[lang]
	if !ok {
		tmpl = templates[i18n.English]
		lang = i18n.English
	}
	notSpecified := i18n.T(lang, "not_specified")
	data := q.Trimmed()
	data.EventDate = or(data.EventDate, notSpecified)
	data.GuestCount = or(data.GuestCount, notSpecified)
	data.EventType = or(data.EventType, notSpecified)
	data.SelectedItems = or(strings.TrimSpace(data.SelectedItems), i18n.T(lang, "no_items_selected"))
	data.Message = or(data.Message, i18n.T(lang, "no_additional_message"))

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// URL returns the wa.me link carrying the formatted message.
func (s *Service) URL(q inquiry.Inquiry, lang i18n.Lang) (string, string, error) {
	msg, err := s.FormatMessage(q, lang)
	if err != nil {
		return "", "", err
	}
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + s.number,
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20"),
	}
	return u.String(), msg, nil
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
