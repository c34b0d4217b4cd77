package model

import "time"

// MaxComponents caps the component list of a single product.
const MaxComponents = 8

type Product struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Description  string      `json:"description" db:"description"`
	Manufacturer string      `json:"manufacturer" db:"manufacturer"`
	Model        string      `json:"model" db:"model"`
	SerialNumber *string     `json:"serial_number,omitempty" db:"serial_number"`
	Category     string      `json:"category" db:"category"`
	Tags         []string    `json:"tags" db:"tags"`
	ImageURL     string      `json:"image_url" db:"image_url"`
	Components   []Component `json:"components" db:"components"`
	CreatedBy    string      `json:"created_by" db:"created_by"`
	CompanyID    *string     `json:"company_id,omitempty" db:"company_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// Passport is the public view of a product that its QR code resolves to.
// It leaves out who created the product and which company manages it.
type Passport struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Manufacturer string      `json:"manufacturer"`
	Model        string      `json:"model"`
	SerialNumber *string     `json:"serial_number,omitempty"`
	Category     string      `json:"category"`
	Tags         []string    `json:"tags"`
	ImageURL     string      `json:"image_url"`
	Components   []Component `json:"components"`
	UpdatedAt    time.Time   `json:"updated_at"`
	PassportURL  string      `json:"passport_url"`
}

// NewPassport projects p onto its public passport, reachable at url.
func NewPassport(p *Product, url string) Passport {
	return Passport{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Manufacturer: p.Manufacturer,
		Model:        p.Model,
		SerialNumber: p.SerialNumber,
		Category:     p.Category,
		Tags:         p.Tags,
		ImageURL:     p.ImageURL,
		Components:   p.Components,
		UpdatedAt:    p.UpdatedAt,
		PassportURL:  url,
	}
}

// OwnerCompany is the company a product is attributed to in analytics.
// Products created without a company belong to their creator.
func (p *Product) OwnerCompany() string {
	if p.CompanyID != nil && *p.CompanyID != "" {
		return *p.CompanyID
	}
	return p.CreatedBy
}

// Component describes one material part of a product. It is stored inline
// in the product and addressed by ID.
type Component struct {
	ID              string   `json:"id"`
	Name            string   `json:"name" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=2000"`
	Material        string   `json:"material" validate:"max=200"`
	Weight          float64  `json:"weight" validate:"gte=0"`
	Recyclable      bool     `json:"recyclable"`
	Certifications  []string `json:"certifications,omitempty"`
	DocumentURL     string   `json:"document_url,omitempty" validate:"omitempty,url"`
	Manufacturer    string   `json:"manufacturer,omitempty"`
	CountryOfOrigin string   `json:"country_of_origin,omitempty"`
	Location        string   `json:"location,omitempty"`
}

// FindComponent returns the index of the component with the given ID, or -1.
func (p *Product) FindComponent(id string) int {
	for i := range p.Components {
		if p.Components[i].ID == id {
			return i
		}
	}
	return -1
}
