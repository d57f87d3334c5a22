package catalog

import "github.com/google/uuid"

// StoreDTO is one catalog store as the field app sees it.
type StoreDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	City    string    `json:"city,omitempty"`
	State   string    `json:"state,omitempty"`
}

// IndustryDTO is one attributable industry.
type IndustryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// StoreIndustriesDTO lists the industries a store is required to showcase.
type StoreIndustriesDTO struct {
	StoreID    uuid.UUID     `json:"store_id"`
	StoreName  string        `json:"store_name"`
	Industries []IndustryDTO `json:"industries"`
}
