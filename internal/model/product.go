package model

import "time"

// Product はカタログ上の商品（ペットまたは用品）を表す。
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Image       string         `json:"image"`
	Stock       int            `json:"stock"`
	PetInfo     map[string]any `json:"petInfo,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
