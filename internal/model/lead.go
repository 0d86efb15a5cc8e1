package model

import (
	"strings"
	"time"
)

type LeadStatus string

const (
	LeadCaptured LeadStatus = "captured"
	LeadSynced   LeadStatus = "synced"
	LeadFailed   LeadStatus = "failed"
)

func (s LeadStatus) String() string {
	return string(s)
}

func (s LeadStatus) Valid() bool {
	return s == LeadCaptured || s == LeadSynced || s == LeadFailed
}

// ParseLeadStatus normalizes input; empty input is invalid.
func ParseLeadStatus(s string) (LeadStatus, bool) {
	st := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	if st.Valid() {
		return st, true
	}
	return "", false
}

// Lead is the DB entity persisted in the leads table.
type Lead struct {
	ID          string     `db:"id"`
	EventID     string     `db:"event_id"`
	SessionID   string     `db:"session_id"`
	FullName    string     `db:"full_name"`
	Email       string     `db:"email"`
	Phone       string     `db:"phone"`
	UTMSource   string     `db:"utm_source"`
	UTMMedium   string     `db:"utm_medium"`
	UTMCampaign string     `db:"utm_campaign"`
	UTMTerm     string     `db:"utm_term"`
	UTMContent  string     `db:"utm_content"`
	Status      LeadStatus `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Contact is the wire shape forwarded to marketing/CRM providers.
type Contact struct {
	EventID     string `json:"event_id"`
	SessionID   string `json:"user_session_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
}
