// Package model defines the canonical prospect record shared across
// pipeline stages and the store.
package model

import "time"

// Status is the lifecycle state of a prospect.
type Status string

// Prospect lifecycle states. The pipeline only ever writes ready and
// sent; the remaining states are set by the campaign platform's reply
// webhooks.
const (
	StatusReady         Status = "ready"
	StatusSent          Status = "sent"
	StatusReplied       Status = "replied"
	StatusInterested    Status = "interested"
	StatusBounced       Status = "bounced"
	StatusNotInterested Status = "not_interested"
)

// ContactedStatuses are the states that count as "this domain has been
// contacted" for cooldown purposes.
var ContactedStatuses = []Status{
	StatusSent,
	StatusReplied,
	StatusInterested,
	StatusBounced,
	StatusNotInterested,
}

// IsContacted reports whether s is a contacted state.
func IsContacted(s Status) bool {
	for _, c := range ContactedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// Lead is a candidate contact moving through the pipeline toward an
// outbound campaign. Fields accumulate stage by stage; a Lead that
// reaches the store has passed every gate.
type Lead struct {
	ID string `json:"id,omitempty"`

	// Identity. CompanyDomain is resolved during enrichment; empty
	// means "unresolved", which the filters treat as non-matchable.
	CompanyName   string `json:"company_name"`
	CompanyDomain string `json:"company_domain,omitempty"`

	// Contact.
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Title     string `json:"title,omitempty"`

	// Provenance.
	JobTitle      string `json:"job_title,omitempty"`
	JobURL        string `json:"job_url,omitempty"`
	Location      string `json:"location,omitempty"`
	SourceKeyword string `json:"source_keyword,omitempty"`
	PostedDate    string `json:"posted_date,omitempty"`
	Source        string `json:"source,omitempty"`

	// Classification. Only "b2b" is ever persisted; B2C leads are
	// dropped, not tagged.
	CompanyType string `json:"company_type,omitempty"`

	// Enrichment metadata.
	EmployeeRange      string `json:"employee_range,omitempty"`
	VerificationStatus string `json:"verification_status,omitempty"`
	VerificationScore  int    `json:"verification_score,omitempty"`

	// Sequence payload.
	SubjectLine string `json:"subject_line,omitempty"`
	Email1      string `json:"email_1,omitempty"`
	Email1PS    string `json:"email_1_ps,omitempty"`
	Email2      string `json:"email_2,omitempty"`
	Email3      string `json:"email_3,omitempty"`

	// Lifecycle.
	Status    Status     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// IdentityPair is the durable dedup key for a persisted lead. Both
// halves must be non-empty for the pair to participate in dedup.
type IdentityPair struct {
	Domain string
	Email  string
}

// Identity returns the lead's identity pair and whether it is complete.
func (l Lead) Identity() (IdentityPair, bool) {
	if l.CompanyDomain == "" || l.Email == "" {
		return IdentityPair{}, false
	}
	return IdentityPair{Domain: l.CompanyDomain, Email: l.Email}, true
}

// Sequence is the five-field email sequence generated per lead.
type Sequence struct {
	SubjectLine string `json:"subject_line"`
	Email1      string `json:"email_1"`
	Email1PS    string `json:"email_1_ps"`
	Email2      string `json:"email_2"`
	Email3      string `json:"email_3"`
}

// ApplySequence copies a generated sequence onto the lead.
func (l *Lead) ApplySequence(seq Sequence) {
	l.SubjectLine = seq.SubjectLine
	l.Email1 = seq.Email1
	l.Email1PS = seq.Email1PS
	l.Email2 = seq.Email2
	l.Email3 = seq.Email3
}

// CampaignRecord is the shape the campaign platform accepts.
// CustomFields carries only populated sequence fields; the platform
// treats a present-but-empty field differently from an absent one in
// template substitution, so falsy values are omitted entirely.
type CampaignRecord struct {
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	CompanyName  string            `json:"company_name"`
	CustomFields map[string]string `json:"custom_fields"`
}

// JobPosting is the raw record shape produced by the job-search scraper.
type JobPosting struct {
	JobTitle      string `json:"job_title"`
	CompanyName   string `json:"company_name"`
	Location      string `json:"location"`
	JobURL        string `json:"job_url"`
	PostedDate    string `json:"posted_date"`
	PostedAgeDays int    `json:"posted_age_days"`
	SourceKeyword string `json:"source_keyword,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ScrapedProfile is the raw record shape produced by the profile scraper.
type ScrapedProfile struct {
	FirstName        string         `json:"firstName"`
	LastName         string         `json:"lastName"`
	Headline         string         `json:"headline"`
	JobTitle         string         `json:"jobTitle"`
	CompanyName      string         `json:"companyName"`
	CurrentCompany   CompanyNameRef `json:"currentCompany"`
	ProfileURL       string         `json:"profileUrl"`
	PublicIdentifier string         `json:"publicIdentifier"`
	GeoLocationName  string         `json:"geoLocationName"`
	GeoCountryName   string         `json:"geoCountryName"`
	Error            string         `json:"error,omitempty"`
}

// CompanyNameRef is the nested company object some profile scrapes carry.
type CompanyNameRef struct {
	Name string `json:"name"`
}

// Company returns the profile's company name, preferring the flat field.
func (p ScrapedProfile) Company() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return p.CurrentCompany.Name
}
