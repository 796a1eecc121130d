package domain

import "time"

// RideStatus represents the current status of a ride.
//
// A ride only ever moves forward: requested -> accepted -> done.
type RideStatus string

const (
	RideStatusRequested RideStatus = "requested"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusDone      RideStatus = "done"
)

// Ride represents a ride from request to settlement.
type Ride struct {
	ID        string
	RiderID   string
	DriverID  string // empty until a driver accepts
	Route     string // "<source> to <destination>", resolved place names
	Fare      float64
	TimeOfDay string // human-readable request time, e.g. "3:04:05 PM"
	Status    RideStatus
	CreatedAt time.Time

	// Rider is populated on listings that join the requesting user.
	Rider *User
}
