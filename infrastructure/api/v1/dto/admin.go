package dto

import "time"

// LeadStatusAttributes moves a lead through the funnel.
type LeadStatusAttributes struct {
	Status string `json:"status"`
}

// LeadStatusRequest is the body of PATCH /admin/leads/{id}.
type LeadStatusRequest = Request[LeadStatusAttributes]

// InviteGenerateAttributes asks for a batch of invite codes.
type InviteGenerateAttributes struct {
	Count     int        `json:"count"`
	Note      string     `json:"note,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// InviteGenerateRequest is the body of POST /admin/invites.
type InviteGenerateRequest = Request[InviteGenerateAttributes]

// PromoteAttributes names the user to make an operator.
type PromoteAttributes struct {
	Email string `json:"email"`
}

// PromoteRequest is the body of POST /admin/users/promote.
type PromoteRequest = Request[PromoteAttributes]
