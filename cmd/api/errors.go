package main

import (
	"net/http"
	"strconv"
	"time"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	seconds := int((retryAfter + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+strconv.Itoa(seconds)+"s")
}

// messageResponse sends a user-facing message with status. Server-side
// failures are logged as errors, the rest as warnings.
func (app *application) messageResponse(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		app.logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		app.logger.Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSONError(w, status, message)
}
