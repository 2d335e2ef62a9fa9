//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// RideStatus is the lifecycle state the backend reports for a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAssigned  RideStatus = "ASSIGNED"
	RideStatusEnRoute   RideStatus = "EN_ROUTE"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Ride is a passenger trip.
type Ride struct {
	ID            string     `json:"id"`
	Status        RideStatus `json:"status"`
	PassengerName string     `json:"passengerName"`
	Phone         string     `json:"phone,omitempty"`
	Pickup        string     `json:"pickup"`
	Dropoff       string     `json:"dropoff"`
	PartySize     int        `json:"partySize"`
	VanID         *string    `json:"vanId"`
	WalkOn        bool       `json:"walkOn"`
	ScheduledAt   *time.Time `json:"scheduledAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// CreateRideRequest is the dispatcher-side ride intake payload.
type CreateRideRequest struct {
	PassengerName string     `json:"passengerName"         validate:"required,max=120"`
	Phone         string     `json:"phone,omitempty"       validate:"omitempty,e164"`
	Pickup        string     `json:"pickup"                validate:"required,max=500"`
	Dropoff       string     `json:"dropoff"               validate:"required,max=500"`
	PartySize     int        `json:"partySize"             validate:"required,min=1,max=15"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	Notes         string     `json:"notes,omitempty"       validate:"max=2000"`
}

// WalkOnRequest records a passenger who approached a van directly.
type WalkOnRequest struct {
	PassengerName string `json:"passengerName" validate:"required,max=120"`
	Dropoff       string `json:"dropoff"       validate:"required,max=500"`
	PartySize     int    `json:"partySize"     validate:"required,min=1,max=15"`
	VanID         string `json:"vanId"         validate:"required,max=64"`
}

// CancelRideRequest carries the reason a ride was cancelled.
type CancelRideRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
