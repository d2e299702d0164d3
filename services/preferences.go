package services

import (
	"strings"

	"liquidity-marketplace/models"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizePreferences slugifies interest tags (dropping empties and duplicates)
// and transliterates the region to title-cased ASCII.
func NormalizePreferences(p models.Preferences) models.Preferences {
	out := models.Preferences{}

	seen := make(map[string]struct{}, len(p.Activities))
	for _, tag := range p.Activities {
		s := slug.Make(tag)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out.Activities = append(out.Activities, s)
	}

	region := strings.Join(strings.Fields(unidecode.Unidecode(p.Region)), " ")
	if region != "" {
		out.Region = cases.Title(language.Und).String(strings.ToLower(region))
	}
	return out
}

// NormalizeAddress lower-cases and trims an on-chain address so that checksum
// variants of the same address share one row.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
