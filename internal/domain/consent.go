package domain

import "time"

const (
	ConsentTypeFull  = "full"
	ConsentTypeQuick = "quick"
)

// ConsentProof es la evidencia auditada de un consentimiento de usuario.
type ConsentProof struct {
	ID          int64     `json:"id,omitempty"`
	ProofHash   string    `json:"proof_hash"`
	Timestamp   int64     `json:"timestamp"`
	Version     string    `json:"version"`
	Acks        []string  `json:"acks"`
	Page        string    `json:"page"`
	Fingerprint string    `json:"fingerprint"`
	UserAgent   string    `json:"user_agent"`
	Screen      string    `json:"screen,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Language    string    `json:"language,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	ConsentType string    `json:"consent_type"`
	Feature     string    `json:"feature,omitempty"`
	LoggedAt    time.Time `json:"logged_at"`
}

// ConsentPageCount acumula consentimientos por pagina.
type ConsentPageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// ConsentStats resume el registro de consentimientos.
type ConsentStats struct {
	TotalConsents      int                `json:"total_consents"`
	FullConsents       int                `json:"full_consents"`
	QuickConsents      int                `json:"quick_consents"`
	UniqueFingerprints int                `json:"unique_fingerprints"`
	ConsentsToday      int                `json:"consents_today"`
	ConsentsThisWeek   int                `json:"consents_this_week"`
	TopPages           []ConsentPageCount `json:"top_pages"`
	VersionBreakdown   map[string]int     `json:"version_breakdown"`
}
