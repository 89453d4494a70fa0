package main

import (
	"fmt"
	"net/http"
	"strings"

	"festive/internal/menu"
)

type menuResponse struct {
	Categories map[string]menu.Text `json:"categories"`
	Dishes     []menu.Dish          `json:"dishes"`
}

// GetMenu godoc
//
//	@Summary		List the menu
//	@Description	Returns the menu categories and dishes, optionally filtered to one category.
//	@Tags			menu
//	@Produce		json
//	@Param			category	query		string	false	"Category key, e.g. veg"
//	@Success		200			{object}	menuResponse
//	@Failure		400			{object}	error
//	@Router			/menu [get]
func (app *application) getMenuHandler(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	dishes := app.catalog.All()
	if category != "" {
		if _, ok := app.catalog.Categories[category]; !ok {
			app.badRequestResponse(w, r, fmt.Errorf("unknown menu category %q", category))
			return
		}
		dishes = app.catalog.ByCategory(category)
	}

	app.jsonResponse(w, http.StatusOK, menuResponse{
		Categories: app.catalog.Categories,
		Dishes:     dishes,
	})
}
