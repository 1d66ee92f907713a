package domain

import (
	"fmt"
	"strings"
	"time"
)

type Restaurant struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`
}

type CreateRestaurantRequest struct {
	Name      string   `json:"name"`
	Schedule  string   `json:"schedule"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type UpdateRestaurantRequest struct {
	Name      *string  `json:"name,omitempty"`
	Schedule  *string  `json:"schedule,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
}

func (r *CreateRestaurantRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(strings.TrimSpace(r.Name)) < 3 {
		return fmt.Errorf("name must be at least 3 characters")
	}
	if strings.TrimSpace(r.Schedule) == "" {
		return fmt.Errorf("schedule is required")
	}
	if len(strings.TrimSpace(r.Schedule)) < 3 {
		return fmt.Errorf("schedule must be at least 3 characters")
	}
	if r.Latitude == nil {
		return fmt.Errorf("latitude is required")
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return fmt.Errorf("invalid latitude")
	}
	if r.Longitude == nil {
		return fmt.Errorf("longitude is required")
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return fmt.Errorf("invalid longitude")
	}
	return nil
}

func (r *UpdateRestaurantRequest) Validate() error {
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return fmt.Errorf("invalid latitude")
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return fmt.Errorf("invalid longitude")
	}
	return nil
}
