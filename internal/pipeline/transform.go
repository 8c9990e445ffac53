// Package pipeline turns scraped LinkedIn records into qualified,
// enriched, sequence-ready prospects and drives the stage sequence
// end to end.
package pipeline

import (
	"github.com/millemail/prospector/internal/model"
)

// Source tags recorded on leads so downstream reporting can tell the
// two scrape entry points apart.
const (
	SourceJobs     = "linkedin_jobs"
	SourceProfiles = "linkedin_profiles"
)

// LeadFromJob maps a raw job posting onto the canonical lead shape.
// The company domain stays unresolved until enrichment.
func LeadFromJob(job model.JobPosting) model.Lead {
	return model.Lead{
		CompanyName:   job.CompanyName,
		JobTitle:      job.JobTitle,
		JobURL:        job.JobURL,
		Location:      job.Location,
		SourceKeyword: job.SourceKeyword,
		PostedDate:    job.PostedDate,
		Source:        SourceJobs,
	}
}

// LeadFromProfile maps a scraped profile onto the canonical lead shape.
// Profiles already name a person, so contact fields are pre-filled; the
// email still comes from enrichment.
func LeadFromProfile(p model.ScrapedProfile) model.Lead {
	title := p.JobTitle
	if title == "" {
		title = p.Headline
	}
	location := p.GeoLocationName
	if location == "" {
		location = p.GeoCountryName
	}
	return model.Lead{
		CompanyName: p.Company(),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Title:       title,
		JobTitle:    title,
		JobURL:      p.ProfileURL,
		Location:    location,
		Source:      SourceProfiles,
	}
}

// sequenceFields maps custom-field keys to their lead accessors, in
// the order the campaign templates reference them.
var sequenceFields = []struct {
	key string
	get func(model.Lead) string
}{
	{"subject_line", func(l model.Lead) string { return l.SubjectLine }},
	{"email_1", func(l model.Lead) string { return l.Email1 }},
	{"email_1_ps", func(l model.Lead) string { return l.Email1PS }},
	{"email_2", func(l model.Lead) string { return l.Email2 }},
	{"email_3", func(l model.Lead) string { return l.Email3 }},
}

// CampaignRecordFrom builds the campaign payload for a lead. Empty
// sequence fields are omitted entirely rather than sent as "": the
// platform substitutes a present-but-empty custom field into templates
// as a blank, which ruins the rendered email.
func CampaignRecordFrom(lead model.Lead) model.CampaignRecord {
	fields := make(map[string]string)
	for _, f := range sequenceFields {
		if v := f.get(lead); v != "" {
			fields[f.key] = v
		}
	}
	return model.CampaignRecord{
		Email:        lead.Email,
		FirstName:    lead.FirstName,
		LastName:     lead.LastName,
		CompanyName:  lead.CompanyName,
		CustomFields: fields,
	}
}
