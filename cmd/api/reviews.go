package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"festive/internal/domain/reviews"
	"festive/internal/i18n"
	"festive/internal/params"
)

type reviewsPageResponse struct {
	Reviews    []reviews.Review  `json:"reviews"`
	Pagination params.Pagination `json:"pagination"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
}

func (app *application) reviewsPage(snap reviews.Snapshot, page int, lang i18n.Lang) (reviewsPageResponse, bool) {
	pg := snap.Pagination(page)
	if !pg.InRange() {
		return reviewsPageResponse{}, false
	}
	window := snap.Window(page)
	if window == nil {
		window = []reviews.Review{}
	}
	resp := reviewsPageResponse{
		Reviews:    window,
		Pagination: pg,
		Loading:    snap.Loading,
	}
	if snap.Err != "" {
		resp.Error = i18n.T(lang, "reviews.fetch_failed")
	}
	return resp, true
}

// loadedSnapshot returns the current state, loading it first if nothing has
// been loaded yet.
func (app *application) loadedSnapshot(ctx context.Context) reviews.Snapshot {
	snap := app.reviews.Snapshot()
	if snap.Version > 0 || snap.Loading || snap.Err != "" {
		return snap
	}
	if err := app.reviews.Refresh(ctx); err != nil && ctx.Err() == nil {
		app.logger.Warnw("initial review load failed", "error", err)
	}
	return app.reviews.Snapshot()
}

// GetReviews godoc
//
//	@Summary		List reviews
//	@Description	Returns one page of reviews, newest first, with pagination metadata.
//	@Tags			reviews
//	@Produce		json
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			lang	query		string	false	"Response language (en|ta)"
//	@Success		200		{object}	reviewsPageResponse
//	@Failure		400		{object}	error
//	@Router			/reviews [get]
func (app *application) getReviewsHandler(w http.ResponseWriter, r *http.Request) {
	pg, err := params.ParsePage(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	snap := app.loadedSnapshot(r.Context())
	resp, ok := app.reviewsPage(snap, pg.Page, requestLang(r, ""))
	if !ok {
		app.badRequestResponse(w, r, fmt.Errorf("page %d is out of range", pg.Page))
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

// A missing starcount means the visitor kept the form's default of five
// stars, so it is a pointer to tell it apart from an explicit 0.
type createReviewPayload struct {
	Name      string `json:"name"`
	StarCount *int   `json:"starcount"`
	EventType string `json:"eventtype"`
	Review    string `json:"review"`
}

func (p createReviewPayload) draft() reviews.Draft {
	stars := reviews.DefaultRating
	if p.StarCount != nil {
		stars = *p.StarCount
	}
	return reviews.Draft{
		Name:      p.Name,
		StarCount: stars,
		EventType: reviews.EventType(p.EventType),
		Review:    p.Review,
	}
}

type createReviewResponse struct {
	Review  reviews.Review `json:"review"`
	Message string         `json:"message"`
}

// CreateReview godoc
//
//	@Summary		Submit a review
//	@Description	Sends the review to the store and shows it at the top of page 1 straight away.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createReviewPayload	true	"Review"
//	@Success		201		{object}	createReviewResponse
//	@Failure		400		{object}	error
//	@Failure		429		{object}	error
//	@Failure		502		{object}	error
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r, "")

	var payload createReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rec, err := app.reviews.Submit(r.Context(), payload.draft())
	if err != nil {
		var verr *reviews.ValidationError
		switch {
		case errors.As(err, &verr):
			msg := i18n.T(lang, verr.Key())
			if msg == verr.Key() {
				msg = i18n.T(lang, "review.invalid")
			}
			app.messageResponse(w, r, http.StatusBadRequest, msg, err)
		case errors.Is(err, reviews.ErrSubmitFailed):
			app.messageResponse(w, r, http.StatusBadGateway, i18n.T(lang, "review.submit_failed"), err)
		case errors.Is(err, reviews.ErrClosed):
			app.messageResponse(w, r, http.StatusServiceUnavailable, i18n.T(lang, "review.submit_failed"), err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusCreated, createReviewResponse{
		Review:  rec,
		Message: i18n.T(lang, "review.submitted"),
	})
}

// RefreshReviews godoc
//
//	@Summary		Reload reviews
//	@Description	Reloads the reviews from the store and returns the first page.
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	reviewsPageResponse
//	@Failure		429	{object}	error
//	@Router			/reviews/refresh [post]
func (app *application) refreshReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.reviews.Refresh(r.Context()); err != nil {
		if errors.Is(err, reviews.ErrClosed) {
			app.messageResponse(w, r, http.StatusServiceUnavailable, "reviews are unavailable", err)
			return
		}
		if r.Context().Err() != nil {
			return
		}
		app.logger.Warnw("manual review refresh failed", "error", err)
	}

	resp, _ := app.reviewsPage(app.reviews.Snapshot(), 1, requestLang(r, ""))
	app.jsonResponse(w, http.StatusOK, resp)
}
