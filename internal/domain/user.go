package domain

import "time"

// UserRole distinguishes riders from drivers.
type UserRole string

const (
	UserRoleRider  UserRole = "rider"
	UserRoleDriver UserRole = "driver"
)

// User represents a registered rider or driver.
//
// LedgerAddress is assigned once at registration (round-robin over the
// ledger node's account pool) and never changes afterwards.
type User struct {
	ID              string
	Username        string
	Email           string
	Contact         string
	CurrentLocation string
	ImageURL        string
	Role            UserRole
	LedgerAddress   string
	CreatedAt       time.Time
}
