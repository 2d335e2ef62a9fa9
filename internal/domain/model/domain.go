//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Domain is a hostname mapped to an organisation (tenant).
type Domain struct {
	ID             string `json:"id"`
	Hostname       string `json:"hostname"`
	OrganizationID string `json:"organizationId"`
	Primary        bool   `json:"primary"`
	Verified       bool   `json:"verified"`
}
