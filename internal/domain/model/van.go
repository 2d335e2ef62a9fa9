//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// VanStatus reports whether a van is on the road.
type VanStatus string

const (
	VanStatusAvailable VanStatus = "AVAILABLE"
	VanStatusInService VanStatus = "IN_SERVICE"
	VanStatusOffline   VanStatus = "OFFLINE"
)

// Van is a vehicle a driver can bring online.
type Van struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Capacity int       `json:"capacity"`
	Status   VanStatus `json:"status"`
	DriverID *string   `json:"driverId"`
}

// DriverStatus is the caller's own availability. The zero value (offline, no van)
// is also what the status endpoint serves when the backend cannot be reached.
type DriverStatus struct {
	Online bool `json:"online"`
	Van    *Van `json:"van"`
}

// GoOnlineRequest selects the van a driver brings online.
type GoOnlineRequest struct {
	VanID string `json:"vanId" validate:"required,max=64"`
}
