package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/stories/products"
)

func TestParseProducts(t *testing.T) {
	input := `name,category,type,thc,price,description,special_offer
Lemon Haze,sorts,Sativa,22%,300,"Citrus, bright",
Pre-roll,joints,hybrid,18,150,1 pcs,buy 3 get 4
Broken,flowers,indica,20,100,,
Cheap,sorts,indica,20,-5,,
Short,sorts
`
	items, skipped, err := parseProducts(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, products.Product{
		Name:        "Lemon Haze",
		Category:    products.CategorySorts,
		Subtype:     products.SubtypeSativa,
		Potency:     22,
		Price:       300,
		Description: "Citrus, bright",
		IsActive:    true,
	}, items[0])
	assert.Equal(t, "buy 3 get 4", items[1].SpecialOffer)

	require.Len(t, skipped, 3)
	assert.Contains(t, skipped[0], "row 4")
	assert.Contains(t, skipped[0], "unknown category")
	assert.Contains(t, skipped[1], "invalid price")
	assert.Contains(t, skipped[2], "expected at least 5 columns")
}

func TestParseProductsWithoutHeader(t *testing.T) {
	items, skipped, err := parseProducts(strings.NewReader("Zkittlez,sorts,indica,24,350\n"))
	require.NoError(t, err)

	assert.Empty(t, skipped)
	require.Len(t, items, 1)
	assert.Equal(t, "Zkittlez", items[0].Name)
	assert.Empty(t, items[0].Description)
}
