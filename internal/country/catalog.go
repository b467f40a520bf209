// Package country holds the compiled-in default PharmaML parameters per
// country. Templates only pre-fill a supplier configuration; they are never
// persisted per tenant.
package country

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
)

// Template carries the country defaults used to pre-fill a SupplierConfig.
type Template struct {
	CountryCode           string
	Label                 string
	DefaultEndpointURL    string
	DefaultDispatcherCode string
}

var templates = map[string]Template{
	"SN": {
		CountryCode:           "SN",
		Label:                 "Sénégal",
		DefaultEndpointURL:    "https://pharmaml.laborex.sn/commande",
		DefaultDispatcherCode: "LABOREX",
	},
	"CI": {
		CountryCode:           "CI",
		Label:                 "Côte d'Ivoire",
		DefaultEndpointURL:    "https://pharmaml.copharmed.ci/commande",
		DefaultDispatcherCode: "COPHARMED",
	},
	"CM": {
		CountryCode:           "CM",
		Label:                 "Cameroun",
		DefaultEndpointURL:    "https://pharmaml.ucpharm.cm/commande",
		DefaultDispatcherCode: "UCPHARM",
	},
	"BF": {
		CountryCode:           "BF",
		Label:                 "Burkina Faso",
		DefaultEndpointURL:    "https://pharmaml.copharbu.bf/commande",
		DefaultDispatcherCode: "COPHARBU",
	},
	"ML": {
		CountryCode:           "ML",
		Label:                 "Mali",
		DefaultEndpointURL:    "https://pharmaml.laborex.ml/commande",
		DefaultDispatcherCode: "LABOREX",
	},
	"TG": {
		CountryCode:           "TG",
		Label:                 "Togo",
		DefaultEndpointURL:    "https://pharmaml.ubipharm.tg/commande",
		DefaultDispatcherCode: "UBIPHARM",
	},
	"BJ": {
		CountryCode:           "BJ",
		Label:                 "Bénin",
		DefaultEndpointURL:    "https://pharmaml.ubipharm.bj/commande",
		DefaultDispatcherCode: "UBIPHARM",
	},
	"GN": {
		CountryCode:           "GN",
		Label:                 "Guinée",
		DefaultEndpointURL:    "https://pharmaml.laborex.gn/commande",
		DefaultDispatcherCode: "LABOREX",
	},
	"GA": {
		CountryCode:           "GA",
		Label:                 "Gabon",
		DefaultEndpointURL:    "https://pharmaml.pharmagabon.ga/commande",
		DefaultDispatcherCode: "PHARMAGABON",
	},
	"MA": {
		CountryCode:           "MA",
		Label:                 "Maroc",
		DefaultEndpointURL:    "https://pharmaml.sophadima.ma/commande",
		DefaultDispatcherCode: "SOPHADIMA",
	},
}

// Lookup returns the template for a country code. The only failure mode is
// not-found; the catalog is immutable and safe for concurrent use.
func Lookup(countryCode string) (Template, error) {
	normalized := strings.ToUpper(strings.TrimSpace(countryCode))
	tpl, ok := templates[normalized]
	if !ok {
		return Template{}, fmt.Errorf("%w: no country template for %q", domain.ErrNotFound, countryCode)
	}
	return tpl, nil
}

// Templates lists every bundled template ordered by country code.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out
}
