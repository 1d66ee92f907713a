package domain

import (
	"fmt"
	"strings"
	"time"
)

type Dish struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	RestaurantID   int64      `json:"restaurantId"`
	RestaurantName string     `json:"restaurantName"`
	Images         []string   `json:"images"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"-"`
}

type CreateDishRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	RestaurantID int64    `json:"restaurantId"`
	Images       []string `json:"images,omitempty"`
}

type UpdateDishRequest struct {
	Name         *string   `json:"name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	RestaurantID *int64    `json:"restaurantId,omitempty"`
	Images       *[]string `json:"images,omitempty"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

func (r *UpdateDishRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if r.RestaurantID != nil && *r.RestaurantID <= 0 {
		return fmt.Errorf("restaurantId must be positive")
	}
	return nil
}

func (r *CreateDishRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if r.RestaurantID <= 0 {
		return fmt.Errorf("restaurantId is required")
	}
	return nil
}
