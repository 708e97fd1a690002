package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunnahassistant/geocoding-service/internal/core/domain"
)

// GeocodingHandler resolves an address to coordinates and a normalized
// formatted address. The response schema is uniform: validation problems and
// internal faults are communicated through the status field, and only an
// internal fault changes the HTTP code.
func GeocodingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := c.Query("address")
		language := c.Query("language", "en")

		if strings.TrimSpace(address) == "" {
			return c.JSON(domain.EmptyResponse(domain.StatusInvalidRequest))
		}

		resp, err := deps.Geocoding.Resolve(c.UserContext(), address, language)
		if err != nil {
			// Cause already logged/notified by the resolver; never exposed.
			return c.Status(fiber.StatusInternalServerError).
				JSON(domain.EmptyResponse(domain.StatusError))
		}
		return c.JSON(resp)
	}
}

// resourceLinks is the static payload served to clients at startup.
type resourceLinks struct {
	TranslationLink  string `json:"translationLink"`
	AdhkaarLink      string `json:"adhkaarLink"`
	QuranZipFileLink string `json:"quranZipFileLink"`
	QuranPagesLink   string `json:"quranPagesLink"`
}

// ResourcesHandler serves the configured static resource URLs.
func ResourcesHandler(deps *Dependencies) fiber.Handler {
	links := resourceLinks{
		TranslationLink:  deps.Resources.TranslationLink,
		AdhkaarLink:      deps.Resources.AdhkaarLink,
		QuranZipFileLink: deps.Resources.QuranZipFileLink,
		QuranPagesLink:   deps.Resources.QuranPagesLink,
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(links)
	}
}
