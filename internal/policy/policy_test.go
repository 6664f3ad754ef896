package policy

import (
	"testing"

	"github.com/vnmchuo/inference-hub/internal/tenant"
)

func TestSelect_KnownCategories(t *testing.T) {
	categories := []tenant.Category{
		tenant.CategoryLegal,
		tenant.CategoryMedical,
		tenant.CategoryEcommerce,
		tenant.CategoryEducation,
		tenant.CategoryGeneral,
	}

	seen := make(map[string]tenant.Category)
	for _, c := range categories {
		p := Select(c)
		if p.Category != c {
			t.Errorf("Select(%q) returned category %q", c, p.Category)
		}
		if p.SystemPrompt == "" {
			t.Errorf("Select(%q) returned empty system prompt", c)
		}
		if prev, ok := seen[p.SystemPrompt]; ok {
			t.Errorf("categories %q and %q share a system prompt", prev, c)
		}
		seen[p.SystemPrompt] = c
	}
}

func TestSelect_FallbackToGeneral(t *testing.T) {
	general := Select(tenant.CategoryGeneral)

	for _, c := range []tenant.Category{"unknown_category", "", "LEGAL"} {
		p := Select(c)
		if p != general {
			t.Errorf("Select(%q) = %+v, expected the general policy", c, p)
		}
	}
}

func TestSelect_Pure(t *testing.T) {
	first := Select(tenant.CategoryLegal)
	second := Select(tenant.CategoryLegal)
	if first != second {
		t.Error("Select is not stable across calls")
	}
}
