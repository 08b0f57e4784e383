// Package types provides common type definitions for the CarbonTrack client.
package types

import (
	"fmt"
	"strings"
)

// Category is the emission category of an entry
type Category string

const (
	// CategoryTransportation covers travel by car, bus, train and plane
	CategoryTransportation Category = "transportation"
	// CategoryEnergy covers household and office energy use
	CategoryEnergy Category = "energy"
	// CategoryFood covers food purchases and meals
	CategoryFood Category = "food"
	// CategoryWaste covers disposal, recycling and composting
	CategoryWaste Category = "waste"
)

// Categories lists every valid category in display order
var Categories = []Category{CategoryTransportation, CategoryEnergy, CategoryFood, CategoryWaste}

// ParseCategory validates a category name (case-insensitive)
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Role is the access role of a user
type Role string

const (
	// RoleUser is a regular account
	RoleUser Role = "user"
	// RoleAdmin may approve registrations and manage users
	RoleAdmin Role = "admin"
)

// UserStatus is the account status of an approved user
type UserStatus string

const (
	// StatusActive marks an account that may log in
	StatusActive UserStatus = "active"
	// StatusInactive marks a disabled account
	StatusInactive UserStatus = "inactive"
)

// Toggle returns the opposite status
func (s UserStatus) Toggle() UserStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// NotificationType is the severity of a notification
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// View is the screen currently shown
type View string

const (
	ViewWelcome         View = "welcome"
	ViewLogin           View = "login"
	ViewRegister        View = "register"
	ViewDashboard       View = "dashboard"
	ViewAddEmission     View = "add-emission"
	ViewRecommendations View = "recommendations"
	ViewAchievements    View = "achievements"
	ViewAdmin           View = "admin"
	ViewProfile         View = "profile"
)

// ParseView validates a view name
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewWelcome, ViewLogin, ViewRegister, ViewDashboard, ViewAddEmission,
		ViewRecommendations, ViewAchievements, ViewAdmin, ViewProfile:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// RequiresAuth reports whether a view is only reachable with a session
func (v View) RequiresAuth() bool {
	switch v {
	case ViewWelcome, ViewLogin, ViewRegister:
		return false
	}
	return true
}

// AuthState is the session state machine
type AuthState string

const (
	AuthAnonymous      AuthState = "anonymous"
	AuthAuthenticating AuthState = "authenticating"
	AuthUser           AuthState = "authenticated-user"
	AuthAdmin          AuthState = "authenticated-admin"
)

// LeaderboardPeriod selects a leaderboard window
type LeaderboardPeriod string

const (
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodAllTime LeaderboardPeriod = "all_time"
)

// UserFilter selects which managed users the admin list shows
type UserFilter string

const (
	FilterAll      UserFilter = "all"
	FilterActive   UserFilter = "active"
	FilterInactive UserFilter = "inactive"
	FilterAdmins   UserFilter = "admins"
)
