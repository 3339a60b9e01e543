package search

import (
	"strings"

	"github.com/franckalain/winelens/internal/models"
)

// Keyword returns the search keyword for a wine category
func Keyword(wineType string) string {
	switch models.WineType(wineType) {
	case models.WineTypeRose:
		return "rosé wine"
	case models.WineTypeSparkling:
		return "sparkling wine champagne"
	case models.WineTypeDessert:
		return "dessert wine"
	case "":
		return "wine"
	default:
		return wineType + " wine"
	}
}

// BuildQuery composes the bottle image query for a wine name and category
func BuildQuery(query, wineType string) string {
	return strings.Join([]string{query, Keyword(wineType), "bottle"}, " ")
}
