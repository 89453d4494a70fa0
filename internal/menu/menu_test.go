package menu

import (
	"testing"

	"festive/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.NotEmpty(t, c.All())
	for _, d := range c.All() {
		assert.NotEmpty(t, d.Name.En, d.ID)
		assert.NotEmpty(t, d.Name.Ta, d.ID)
	}

	d, err := c.Get("chicken-biryani")
	require.NoError(t, err)
	assert.Equal(t, "non-veg", d.Category)
	assert.Equal(t, "சிக்கன் பிரியாணி", d.Name.In(i18n.Tamil))
	assert.Equal(t, "Chicken Biryani", d.Name.In(i18n.English))

	_, err = c.Get("pizza")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, d := range c.ByCategory("sweets") {
		assert.Equal(t, "sweets", d.Category)
	}
	assert.Empty(t, c.ByCategory("drinks"))
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := map[string]string{
		"duplicate id": `
categories: {veg: {en: Veg}}
dishes:
  - {id: a, category: veg, name: {en: A}}
  - {id: a, category: veg, name: {en: A again}}
`,
		"unknown category": `
categories: {veg: {en: Veg}}
dishes:
  - {id: a, category: drinks, name: {en: A}}
`,
		"missing id": `
categories: {veg: {en: Veg}}
dishes:
  - {category: veg, name: {en: A}}
`,
		"not yaml": "dishes: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestTextFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Veg", Text{En: "Veg"}.In(i18n.Tamil))
}
