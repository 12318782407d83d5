package models

import "time"

// Venue is an off-site location or hotel an event can be held at.
type Venue struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ConventionID uint   `json:"conventionID" gorm:"not null;index"`
	Name         string `json:"name" gorm:"not null"`
	Kind         string `json:"kind" gorm:"size:16"` // venue | hotel
	Address      string `json:"address"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
