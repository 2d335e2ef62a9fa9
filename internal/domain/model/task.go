//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// TaskKind distinguishes the legs of a ride assigned to a driver.
type TaskKind string

const (
	TaskKindPickup  TaskKind = "PICKUP"
	TaskKindDropoff TaskKind = "DROPOFF"
)

// Task is a unit of work assigned to the calling driver.
type Task struct {
	ID          string     `json:"id"`
	RideID      string     `json:"rideId"`
	Kind        TaskKind   `json:"kind"`
	Status      string     `json:"status"`
	Address     string     `json:"address"`
	Passenger   string     `json:"passenger"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Transfer hands a ride from one driver to another.
type Transfer struct {
	ID           string `json:"id"`
	RideID       string `json:"rideId"`
	FromDriverID string `json:"fromDriverId"`
	ToDriverID   string `json:"toDriverId"`
	Status       string `json:"status"`
}
