package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/country"
)

// Country routes expose the compiled-in catalog so a configuration UI can
// pre-fill endpoint defaults per market.
func RegisterCountryRoutes(router fiber.Router) {
	v1 := router.Group("/v1")
	v1.Get("/countries", ListCountries)
	v1.Get("/countries/:code", GetCountry)
}

type countryResponse struct {
	CountryCode           string `json:"countryCode"`
	Label                 string `json:"label"`
	DefaultEndpointURL    string `json:"defaultEndpointUrl"`
	DefaultDispatcherCode string `json:"defaultDispatcherCode"`
}

type countryListResponse struct {
	Data []countryResponse `json:"data"`
}

func ListCountries(c *fiber.Ctx) error {
	templates := country.Templates()

	data := make([]countryResponse, 0, len(templates))
	for _, tpl := range templates {
		data = append(data, toCountryResponse(tpl))
	}

	return c.Status(fiber.StatusOK).JSON(countryListResponse{Data: data})
}

func GetCountry(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))

	tpl, err := country.Lookup(code)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCountryResponse(tpl))
}

func toCountryResponse(tpl country.Template) countryResponse {
	return countryResponse{
		CountryCode:           tpl.CountryCode,
		Label:                 tpl.Label,
		DefaultEndpointURL:    tpl.DefaultEndpointURL,
		DefaultDispatcherCode: tpl.DefaultDispatcherCode,
	}
}
