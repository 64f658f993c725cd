package routeplanner

import "time"

// Entity carries the timestamps shared by all stored records.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
