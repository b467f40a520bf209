package pharmaml

// Dialect describes the country-specific shape of the PharmaML documents.
// Dialects are a lookup table selected at build time, not per-country types:
// the builder stays a single pure function.
type Dialect struct {
	CountryCode string
	// Version is the protocol version attribute on the document root.
	Version string
	// DateFormat is the Go layout used for dateCommande.
	DateFormat string
	// PriceScale is the number of decimal places the dialect carries for
	// unit prices. XOF/XAF markets have no currency subunit.
	PriceScale int32
	// EmbedSecretKey reports whether the shared secret travels in the
	// message header; otherwise it stays a transport-level concern.
	EmbedSecretKey bool
}

var defaultDialect = Dialect{
	CountryCode:    "",
	Version:        "2.0",
	DateFormat:     "2006-01-02",
	PriceScale:     0,
	EmbedSecretKey: true,
}

var dialects = map[string]Dialect{
	"SN": {CountryCode: "SN", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	"CI": {CountryCode: "CI", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	"CM": {CountryCode: "CM", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	"BF": {CountryCode: "BF", Version: "1.1", DateFormat: "02/01/2006", PriceScale: 0, EmbedSecretKey: true},
	"ML": {CountryCode: "ML", Version: "1.1", DateFormat: "02/01/2006", PriceScale: 0, EmbedSecretKey: true},
	"TG": {CountryCode: "TG", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	"BJ": {CountryCode: "BJ", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	"GN": {CountryCode: "GN", Version: "1.1", DateFormat: "02/01/2006", PriceScale: 0, EmbedSecretKey: true},
	"GA": {CountryCode: "GA", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 0, EmbedSecretKey: true},
	// Morocco invoices in dirhams with centimes and authenticates at the
	// transport level only.
	"MA": {CountryCode: "MA", Version: "2.0", DateFormat: "2006-01-02", PriceScale: 2, EmbedSecretKey: false},
}

// DialectFor returns the dialect for a country code, falling back to the
// default dialect for unknown or empty codes.
func DialectFor(countryCode string) Dialect {
	if d, ok := dialects[countryCode]; ok {
		return d
	}
	return defaultDialect
}
