package domain

import (
	"fmt"
	"strings"
	"time"
)

// Attraction statuses
const (
	AttractionActive   = "active"
	AttractionInactive = "inactive"
)

type Attraction struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	VideoURL     string    `json:"videoUrl"`
	CulturalInfo string    `json:"culturalInfo"`
	Schedule     string    `json:"schedule"`
	EntryFee     string    `json:"entryFee"`
	Restrictions string    `json:"restrictions"`
	Difficulty   string    `json:"difficulty"`
	Services     string    `json:"services"`
	Photos       []string  `json:"photos"`
	AudioURL     string    `json:"audioUrl"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateAttractionRequest struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	VideoURL     string   `json:"videoUrl,omitempty"`
	CulturalInfo string   `json:"culturalInfo,omitempty"`
	Schedule     string   `json:"schedule,omitempty"`
	EntryFee     string   `json:"entryFee,omitempty"`
	Restrictions string   `json:"restrictions,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Services     string   `json:"services,omitempty"`
	Photos       []string `json:"photos,omitempty"`
	AudioURL     string   `json:"audioUrl,omitempty"`
}

type UpdateAttractionRequest struct {
	Name         *string   `json:"name,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	VideoURL     *string   `json:"videoUrl,omitempty"`
	CulturalInfo *string   `json:"culturalInfo,omitempty"`
	Schedule     *string   `json:"schedule,omitempty"`
	EntryFee     *string   `json:"entryFee,omitempty"`
	Restrictions *string   `json:"restrictions,omitempty"`
	Difficulty   *string   `json:"difficulty,omitempty"`
	Services     *string   `json:"services,omitempty"`
	Photos       *[]string `json:"photos,omitempty"`
	AudioURL     *string   `json:"audioUrl,omitempty"`
}

// AttractionFilter narrows list results; zero values mean no filtering.
type AttractionFilter struct {
	Status     string
	Category   string
	Difficulty string
}

type AttractionStats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	ByCategory   map[string]int `json:"byCategory"`
	ByDifficulty map[string]int `json:"byDifficulty"`
}

func (r *CreateAttractionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if r.Latitude == nil || r.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required")
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ToAttraction builds the row to insert; new attractions start active.
func (r *CreateAttractionRequest) ToAttraction() *Attraction {
	return &Attraction{
		Name:         strings.TrimSpace(r.Name),
		Category:     strings.TrimSpace(r.Category),
		Description:  strings.TrimSpace(r.Description),
		Latitude:     *r.Latitude,
		Longitude:    *r.Longitude,
		VideoURL:     r.VideoURL,
		CulturalInfo: r.CulturalInfo,
		Schedule:     r.Schedule,
		EntryFee:     r.EntryFee,
		Restrictions: r.Restrictions,
		Difficulty:   r.Difficulty,
		Services:     r.Services,
		Photos:       r.Photos,
		AudioURL:     r.AudioURL,
		Status:       AttractionActive,
	}
}

func (r *UpdateAttractionRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

func IsValidAttractionStatus(status string) bool {
	return status == AttractionActive || status == AttractionInactive
}
