//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Shift is a scheduled block of driving time for a van crew.
type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	VanID     *string   `json:"vanId"`
	DriverIDs []string  `json:"driverIds"`
	Notes     string    `json:"notes,omitempty"`
}

// CreateShiftRequest is the payload accepted by CreateShift.
type CreateShiftRequest struct {
	Name      string    `json:"name"                validate:"required,max=120"`
	StartsAt  time.Time `json:"startsAt"            validate:"required"`
	EndsAt    time.Time `json:"endsAt"              validate:"required,gtfield=StartsAt"`
	VanID     string    `json:"vanId,omitempty"     validate:"omitempty,max=64"`
	DriverIDs []string  `json:"driverIds,omitempty" validate:"omitempty,dive,required"`
	Notes     string    `json:"notes,omitempty"     validate:"max=2000"`
}
