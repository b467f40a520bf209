package country

import (
	"errors"
	"sort"
	"testing"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tpl, err := Lookup(" sn ")
	if err != nil {
		t.Fatalf("Lookup() unexpected error = %v", err)
	}
	if tpl.CountryCode != "SN" {
		t.Fatalf("CountryCode = %q, want SN", tpl.CountryCode)
	}
	if tpl.DefaultEndpointURL == "" || tpl.DefaultDispatcherCode == "" {
		t.Fatalf("template defaults should be populated, got %+v", tpl)
	}

	_, err = Lookup("ZZ")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestTemplatesSortedAndComplete(t *testing.T) {
	t.Parallel()

	all := Templates()
	if len(all) == 0 {
		t.Fatal("catalog should not be empty")
	}

	codes := make([]string, 0, len(all))
	for _, tpl := range all {
		if tpl.Label == "" {
			t.Fatalf("template %s has no label", tpl.CountryCode)
		}
		codes = append(codes, tpl.CountryCode)
	}
	if !sort.StringsAreSorted(codes) {
		t.Fatalf("templates not sorted by country code: %v", codes)
	}
}
