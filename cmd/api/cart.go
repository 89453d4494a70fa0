package main

import (
	"errors"
	"net/http"

	"festive/internal/domain/carts"
	"festive/internal/menu"

	"github.com/go-chi/chi/v5"
)

type cartResponse struct {
	*carts.Cart
	Selection string `json:"selection"`
}

func (app *application) writeCart(w http.ResponseWriter, r *http.Request, status int, c *carts.Cart) {
	app.jsonResponse(w, status, cartResponse{
		Cart:      c,
		Selection: carts.FormatSelection(c.Items, requestLang(r, "")),
	})
}

// cartError maps store errors to responses. It reports whether err was nil.
func (app *application) cartError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, carts.ErrCartNotFound), errors.Is(err, carts.ErrCartExpired):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, menu.ErrNotFound):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
	return false
}

// CreateCart godoc
//
//	@Summary		Start a cart
//	@Tags			cart
//	@Produce		json
//	@Success		201	{object}	cartResponse
//	@Router			/cart [post]
func (app *application) createCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := app.carts.Create(r.Context())
	if !app.cartError(w, r, err) {
		return
	}
	app.writeCart(w, r, http.StatusCreated, c)
}

// GetCart godoc
//
//	@Summary		Get a cart
//	@Tags			cart
//	@Produce		json
//	@Param			token	path		string	true	"Cart token"
//	@Param			lang	query		string	false	"Selection language (en|ta)"
//	@Success		200		{object}	cartResponse
//	@Failure		404		{object}	error
//	@Router			/cart/{token} [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := app.carts.Get(r.Context(), chi.URLParam(r, "token"))
	if !app.cartError(w, r, err) {
		return
	}
	app.writeCart(w, r, http.StatusOK, c)
}

type addCartItemPayload struct {
	DishID string `json:"dish_id" validate:"required,max=64"`
}

// AddCartItem godoc
//
//	@Summary		Add a dish to a cart
//	@Description	Adding a dish that is already selected leaves the cart unchanged.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Cart token"
//	@Param			payload	body		addCartItemPayload	true	"Dish"
//	@Success		200		{object}	cartResponse
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/cart/{token}/items [post]
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload addCartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	c, err := app.carts.AddItem(r.Context(), chi.URLParam(r, "token"), payload.DishID)
	if !app.cartError(w, r, err) {
		return
	}
	app.writeCart(w, r, http.StatusOK, c)
}

// RemoveCartItem godoc
//
//	@Summary		Remove a dish from a cart
//	@Tags			cart
//	@Produce		json
//	@Param			token	path		string	true	"Cart token"
//	@Param			itemID	path		string	true	"Dish ID"
//	@Success		200		{object}	cartResponse
//	@Failure		404		{object}	error
//	@Router			/cart/{token}/items/{itemID} [delete]
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	c, err := app.carts.RemoveItem(r.Context(), chi.URLParam(r, "token"), chi.URLParam(r, "itemID"))
	if !app.cartError(w, r, err) {
		return
	}
	app.writeCart(w, r, http.StatusOK, c)
}

// ClearCart godoc
//
//	@Summary		Empty a cart
//	@Tags			cart
//	@Produce		json
//	@Param			token	path		string	true	"Cart token"
//	@Success		200		{object}	cartResponse
//	@Failure		404		{object}	error
//	@Router			/cart/{token} [delete]
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := app.carts.Clear(r.Context(), chi.URLParam(r, "token"))
	if !app.cartError(w, r, err) {
		return
	}
	app.writeCart(w, r, http.StatusOK, c)
}
