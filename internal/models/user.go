// Package models provides data models for the CarbonTrack client.
package models

import (
	"github.com/carbontrack/internal/types"
)

// DefaultCarbonBudget is the monthly allowance assumed when the backend omits one
const DefaultCarbonBudget = 2000

// UserProfile is the signed-in user as returned by /auth/me
type UserProfile struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	CarbonBudget float64    `json:"carbon_budget"`
	Role         types.Role `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == types.RoleAdmin
}

// Normalize fills the defaults the backend may leave out
func (p *UserProfile) Normalize() {
	if p.Role == "" {
		p.Role = types.RoleUser
	}
	if p.FullName == "" {
		p.FullName = "User"
	}
	if p.CarbonBudget == 0 {
		p.CarbonBudget = DefaultCarbonBudget
	}
}

// RegistrationRequest is the payload of POST /auth/register
type RegistrationRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Organization string `json:"organization,omitempty"`
}

// PendingUser is a registration awaiting admin approval
type PendingUser struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
	RegisteredAt string `json:"registeredAt"`
}

// ManagedUser is an approved account as listed in the admin panel
type ManagedUser struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Status     types.UserStatus `json:"status"`
	Role       types.Role       `json:"role"`
	LastActive string           `json:"lastActive,omitempty"`
}

// AdminStats summarises the installation for the admin panel
type AdminStats struct {
	TotalUsers           int     `json:"total_users"`
	PendingRegistrations int     `json:"pending_registrations"`
	ActiveThisMonth      int     `json:"active_this_month"`
	TotalCarbonTracked   float64 `json:"total_carbon_tracked"`
	TotalEntries         int     `json:"total_entries"`
}
