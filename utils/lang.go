package utils

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

// DefaultLanguage is French, matching the historical deployments.
const DefaultLanguage = "fr"

var langMatcher = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
})

// RequestLang resolves the display language from the lang query parameter,
// falling back to Accept-Language, then to the default.
func RequestLang(c *fiber.Ctx) string {
	raw := c.Query("lang")
	if raw == "" {
		raw = c.Get("Accept-Language")
	}
	if raw == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	_, index, _ := langMatcher.Match(tags...)
	if index == 1 {
		return "en"
	}
	return "fr"
}
