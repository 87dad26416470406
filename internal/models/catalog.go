package models

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Subtitle     string    `json:"subtitle"`
	Description  string    `json:"description"`
	HeroImage    string    `json:"hero_image"`
	CardImage    string    `json:"card_image"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	Products     []Product `json:"products,omitempty"`
}

// Collection groups products into a curated jewelry line.
type Collection struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	Products     []Product `json:"products,omitempty"`
}

type Banner struct {
	BaseModel
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Image        string `json:"image"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}
