package comic

import (
	"strings"

	"marvelous/internal/platform/marvel"
)

// FromRemote maps a gateway comic onto the local record. Missing remote
// fields leave the matching field unset.
func FromRemote(mc marvel.Comic) Comic {
	c := Comic{
		ID:          mc.ID,
		Title:       mc.Title,
		Description: mc.Description,
		ISBN:        mc.ISBN,
	}

	if len(mc.Prices) > 0 {
		price := mc.Prices[0].Price
		c.Price = &price
	}

	// Only the advertised count decides; items are not inspected on their own.
	if mc.Creators.Available != nil && *mc.Creators.Available > 0 {
		c.Authors = formatCreators(mc.Creators.Items)
	}

	return c
}

func formatCreators(items []marvel.CreatorSummary) string {
	names := make([]string, len(items))
	for i, cs := range items {
		names[i] = cs.Name
	}
	return strings.Join(names, ", ")
}
