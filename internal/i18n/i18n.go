// Package i18n holds the site's English and Tamil user-facing strings.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

type Lang string

const (
	English Lang = "en"
	Tamil   Lang = "ta"
)

var (
	supported = []language.Tag{language.English, language.Tamil}
	matcher   = language.NewMatcher(supported)
)

// Negotiate picks the response language. An explicit ?lang= value wins over
// the Accept-Language header; anything unrecognised falls back to English.
func Negotiate(explicit, acceptLanguage string) Lang {
	if l, ok := Parse(explicit); ok {
		return l
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return English
	}
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	if supported[idx] == language.Tamil {
		return Tamil
	}
	return English
}

// Parse accepts "en"/"ta" and their regional variants.
func Parse(s string) (Lang, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ta":
		return Tamil, true
	case "en":
		return English, true
	}
	return "", false
}

var catalog = map[string]map[Lang]string{
	"not_specified": {
		English: "Not specified",
		Tamil:   "குறிப்பிடப்படவில்லை",
	},
	"no_items_selected": {
		English: "No items selected",
		Tamil:   "எந்த உணவும் தேர்ந்தெடுக்கப்படவில்லை",
	},
	"no_additional_message": {
		English: "No additional message",
		Tamil:   "கூடுதல் செய்தி இல்லை",
	},
	"review.name.required": {
		English: "Please enter your name.",
		Tamil:   "உங்கள் பெயரை உள்ளிடவும்.",
	},
	"review.review.required": {
		English: "Please enter a review with at least 10 characters.",
		Tamil:   "குறைந்தது 10 எழுத்துகளுடன் மதிப்பாய்வை உள்ளிடவும்.",
	},
	"review.review.too_short": {
		English: "Please enter a review with at least 10 characters.",
		Tamil:   "குறைந்தது 10 எழுத்துகளுடன் மதிப்பாய்வை உள்ளிடவும்.",
	},
	"review.invalid": {
		English: "Please check the review form and try again.",
		Tamil:   "மதிப்பாய்வு படிவத்தை சரிபார்த்து மீண்டும் முயற்சிக்கவும்.",
	},
	"review.submitted": {
		English: "Thank you for your feedback!",
		Tamil:   "உங்கள் கருத்துக்கு நன்றி!",
	},
	"review.submit_failed": {
		English: "Failed to submit review. Please try again.",
		Tamil:   "மதிப்பாய்வு சமர்ப்பிக்க முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
	},
	"reviews.fetch_failed": {
		English: "Failed to fetch reviews",
		Tamil:   "மதிப்பாய்வுகளைப் பெற முடியவில்லை",
	},
	"contact.sent": {
		English: "Thank you! Your inquiry has been sent.",
		Tamil:   "நன்றி! உங்கள் விசாரணை அனுப்பப்பட்டது.",
	},
	"contact.throttled": {
		English: "Please wait a few seconds before sending another message.",
		Tamil:   "மற்றொரு செய்தியை அனுப்பும் முன் சில வினாடிகள் காத்திருக்கவும்.",
	},
	"contact.gmail_auth": {
		English: "Gmail account connection expired. Please reconnect your Gmail account in EmailJS dashboard.",
		Tamil:   "மின்னஞ்சல் சேவை தற்காலிகமாக கிடைக்கவில்லை. பின்னர் முயற்சிக்கவும்.",
	},
	"contact.invalid_form": {
		English: "Invalid form data. Please check all required fields are filled correctly.",
		Tamil:   "படிவத் தரவு தவறானது. தேவையான அனைத்து புலங்களையும் சரிபார்க்கவும்.",
	},
	"contact.misconfigured": {
		English: "Email service configuration error. Please contact support.",
		Tamil:   "மின்னஞ்சல் சேவை அமைப்பில் பிழை. ஆதரவைத் தொடர்பு கொள்ளவும்.",
	},
	"contact.template_invalid": {
		English: "Email template validation failed. Please try again.",
		Tamil:   "மின்னஞ்சல் வார்ப்புரு சரிபார்ப்பு தோல்வியடைந்தது. மீண்டும் முயற்சிக்கவும்.",
	},
	"contact.failed": {
		English: "Failed to send your message. Please try again or contact us on WhatsApp.",
		Tamil:   "உங்கள் செய்தியை அனுப்ப முடியவில்லை. மீண்டும் முயற்சிக்கவும் அல்லது WhatsApp இல் தொடர்பு கொள்ளவும்.",
	},
}

// T returns the message for key in lang. Missing Tamil text falls back to
// English, and an unknown key is returned as is.
func T(lang Lang, key string) string {
	msgs, ok := catalog[key]
	if !ok {
		return key
	}
	if s, ok := msgs[lang]; ok {
		return s
	}
	return msgs[English]
}
