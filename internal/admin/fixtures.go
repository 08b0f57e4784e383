package admin

import (
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

func demoPending() []models.PendingUser {
	return []models.PendingUser{
		{ID: "pending_1", FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@example.com", Organization: "Green Tech Inc.", RegisteredAt: "2025-09-29T10:30:00Z"},
		{ID: "pending_2", FirstName: "Michael", LastName: "Chen", Email: "michael.chen@university.edu", Organization: "University Research Lab", RegisteredAt: "2025-09-29T15:45:00Z"},
		{ID: "pending_3", FirstName: "Emma", LastName: "Davis", Email: "emma.davis@startup.co", Organization: "EcoSolutions Startup", RegisteredAt: "2025-09-30T09:15:00Z"},
	}
}

func demoUsers() []models.ManagedUser {
	return []models.ManagedUser{
		{ID: "user_1", Name: "Demo User", Email: "demo@carbontrack.dev", Status: types.StatusActive, Role: types.RoleAdmin, LastActive: "2025-09-30T12:00:00Z"},
		{ID: "user_2", Name: "Alex Thompson", Email: "alex@greencompany.com", Status: types.StatusActive, Role: types.RoleUser, LastActive: "2025-09-29T18:30:00Z"},
		{ID: "user_3", Name: "Lisa Rodriguez", Email: "lisa@ecofirm.org", Status: types.StatusInactive, Role: types.RoleUser, LastActive: "2025-09-15T14:20:00Z"},
	}
}

func demoStats() *models.AdminStats {
	return &models.AdminStats{
		TotalUsers:           156,
		PendingRegistrations: 8,
		ActiveThisMonth:      42,
		TotalCarbonTracked:   2847,
	}
}
