package main

import (
	"errors"
	"net/http"

	"festive/internal/domain/carts"
	"festive/internal/domain/inquiry"
	"festive/internal/i18n"
	"festive/internal/mailer"
)

type inquiryPayload struct {
	inquiry.Inquiry
	CartToken string `json:"cart_token"`
	Lang      string `json:"lang"`
}

func (p inquiryPayload) validate() error {
	if err := p.Inquiry.Validate(); err != nil {
		return err
	}
	if err := Validate.Var(p.CartToken, "omitempty,uuid"); err != nil {
		return err
	}
	return Validate.Var(p.Lang, "omitempty,max=16")
}

// readInquiry decodes and validates an inquiry form, attaching the cart
// selection rendered in selectionLang. A missing or expired cart just means
// nothing was selected.
func (app *application) readInquiry(w http.ResponseWriter, r *http.Request, selectionLang func(i18n.Lang) i18n.Lang) (inquiry.Inquiry, i18n.Lang, bool) {
	var payload inquiryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return inquiry.Inquiry{}, "", false
	}
	lang := requestLang(r, payload.Lang)

	payload.Inquiry = payload.Inquiry.Trimmed()
	if err := payload.validate(); err != nil {
		app.messageResponse(w, r, http.StatusBadRequest, i18n.T(lang, "contact.invalid_form"), err)
		return inquiry.Inquiry{}, "", false
	}

	var items []carts.CartLine
	if payload.CartToken != "" {
		c, err := app.carts.Get(r.Context(), payload.CartToken)
		if err != nil {
			app.logger.Infow("inquiry cart unavailable", "error", err)
		} else {
			items = c.Items
		}
	}

	q := payload.Inquiry
	q.SelectedItems = carts.FormatSelection(items, selectionLang(lang))
	return q, lang, true
}

type whatsappInquiryResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// WhatsAppInquiry godoc
//
//	@Summary		Build a WhatsApp inquiry link
//	@Description	Validates the inquiry form and returns a wa.me link carrying the prefilled message.
//	@Tags			inquiries
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		inquiryPayload	true	"Inquiry form"
//	@Success		200		{object}	whatsappInquiryResponse
//	@Failure		400		{object}	error
//	@Router			/inquiries/whatsapp [post]
func (app *application) whatsappInquiryHandler(w http.ResponseWriter, r *http.Request) {
	q, lang, ok := app.readInquiry(w, r, func(l i18n.Lang) i18n.Lang { return l })
	if !ok {
		return
	}

	link, msg, err := app.whatsapp.URL(q, lang)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, whatsappInquiryResponse{URL: link, Message: msg})
}

// Contact godoc
//
//	@Summary		Send a contact inquiry
//	@Description	Emails the inquiry to the caterer. One message per phone number is let through every throttle window.
//	@Tags			inquiries
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		inquiryPayload	true	"Inquiry form"
//	@Success		202		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		429		{object}	error
//	@Failure		502		{object}	error
//	@Failure		503		{object}	error
//	@Router			/contact [post]
func (app *application) contactHandler(w http.ResponseWriter, r *http.Request) {
	// The email goes to the caterer, so the selection is always in English.
	q, lang, ok := app.readInquiry(w, r, func(i18n.Lang) i18n.Lang { return i18n.English })
	if !ok {
		return
	}

	if app.mailer == nil {
		app.messageResponse(w, r, http.StatusServiceUnavailable, i18n.T(lang, "contact.misconfigured"), errors.New("no email transport configured"))
		return
	}

	status, err := app.mailer.Send(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, mailer.ErrThrottled):
			app.messageResponse(w, r, http.StatusTooManyRequests, i18n.T(lang, "contact.throttled"), err)
		case errors.Is(err, mailer.ErrGmailAuth):
			app.messageResponse(w, r, http.StatusServiceUnavailable, i18n.T(lang, "contact.gmail_auth"), err)
		case errors.Is(err, mailer.ErrInvalidForm):
			app.messageResponse(w, r, http.StatusBadRequest, i18n.T(lang, "contact.invalid_form"), err)
		case errors.Is(err, mailer.ErrMisconfigured):
			app.messageResponse(w, r, http.StatusBadGateway, i18n.T(lang, "contact.misconfigured"), err)
		case errors.Is(err, mailer.ErrTemplateInvalid):
			app.messageResponse(w, r, http.StatusBadGateway, i18n.T(lang, "contact.template_invalid"), err)
		default:
			app.messageResponse(w, r, http.StatusBadGateway, i18n.T(lang, "contact.failed"), err)
		}
		return
	}

	app.logger.Infow("contact inquiry sent", "status", status, "event_type", q.EventType)
	app.jsonResponse(w, http.StatusAccepted, map[string]string{"message": i18n.T(lang, "contact.sent")})
}
