package qualify

import "github.com/millemail/prospector/internal/model"

// FilterDuplicates removes leads whose (domain, email) identity pair is
// already known. A lead missing either half of its identity is never a
// duplicate, regardless of the other half. Matching is exact on the raw
// stored strings; surviving leads keep their input order and are not
// mutated.
func FilterDuplicates(leads []model.Lead, existing map[model.IdentityPair]struct{}) []model.Lead {
	filtered := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if pair, ok := lead.Identity(); ok {
			if _, dup := existing[pair]; dup {
				continue
			}
		}
		filtered = append(filtered, lead)
	}
	return filtered
}

// DedupeByCompany keeps the first lead seen for each company name,
// dropping later occurrences. Leads with no company name are dropped:
// dedup and every later gate key off the company, so a nameless lead
// can never proceed.
func DedupeByCompany(leads []model.Lead) []model.Lead {
	seen := make(map[string]struct{}, len(leads))
	unique := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.CompanyName == "" {
			continue
		}
		if _, ok := seen[lead.CompanyName]; ok {
			continue
		}
		seen[lead.CompanyName] = struct{}{}
		unique = append(unique, lead)
	}
	return unique
}
