package request

import (
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

// Component is a component in a request body. ID is only honoured on product
// updates, where it names the existing component the entry replaces.
type Component struct {
	ID              string   `json:"id,omitempty" validate:"omitempty,max=64"`
	Name            string   `json:"name" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=2000"`
	Material        string   `json:"material" validate:"max=200"`
	Weight          float64  `json:"weight" validate:"gte=0"`
	Recyclable      bool     `json:"recyclable"`
	Certifications  []string `json:"certifications" validate:"max=20,dive,max=200"`
	DocumentURL     string   `json:"document_url" validate:"omitempty,url"`
	Manufacturer    string   `json:"manufacturer" validate:"max=200"`
	CountryOfOrigin string   `json:"country_of_origin" validate:"max=100"`
	Location        string   `json:"location" validate:"max=200"`
}

func (c Component) ToModel() model.Component {
	return model.Component{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Material:        c.Material,
		Weight:          c.Weight,
		Recyclable:      c.Recyclable,
		Certifications:  c.Certifications,
		DocumentURL:     c.DocumentURL,
		Manufacturer:    c.Manufacturer,
		CountryOfOrigin: c.CountryOfOrigin,
		Location:        c.Location,
	}
}

type CreateProduct struct {
	Name         string      `json:"name" validate:"required,max=200"`
	Description  string      `json:"description" validate:"max=5000"`
	Manufacturer string      `json:"manufacturer" validate:"max=200"`
	Model        string      `json:"model" validate:"max=200"`
	SerialNumber *string     `json:"serial_number" validate:"omitempty,max=200"`
	Category     string      `json:"category" validate:"max=100"`
	Tags         []string    `json:"tags" validate:"max=50,dive,max=100"`
	ImageURL     string      `json:"image_url" validate:"omitempty,url"`
	Components   []Component `json:"components" validate:"max=8,dive"`
}

// ToModel builds a product owned by ownerID.
func (c CreateProduct) ToModel(ownerID string, companyID *string) *model.Product {
	p := &model.Product{
		Name:         c.Name,
		Description:  c.Description,
		Manufacturer: c.Manufacturer,
		Model:        c.Model,
		SerialNumber: c.SerialNumber,
		Category:     c.Category,
		Tags:         c.Tags,
		ImageURL:     c.ImageURL,
		CreatedBy:    ownerID,
		CompanyID:    companyID,
	}
	for _, comp := range c.Components {
		m := comp.ToModel()
		m.ID = ""
		p.Components = append(p.Components, m)
	}
	return p
}

type UpdateProduct struct {
	Name         *string      `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string      `json:"description" validate:"omitempty,max=5000"`
	Manufacturer *string      `json:"manufacturer" validate:"omitempty,max=200"`
	Model        *string      `json:"model" validate:"omitempty,max=200"`
	SerialNumber *string      `json:"serial_number" validate:"omitempty,max=200"`
	Category     *string      `json:"category" validate:"omitempty,max=100"`
	Tags         *[]string    `json:"tags" validate:"omitempty,max=50"`
	ImageURL     *string      `json:"image_url" validate:"omitempty,url"`
	Components   *[]Component `json:"components" validate:"omitempty,max=8,dive"`
}

func (u UpdateProduct) ToPatch() core.ProductPatch {
	patch := core.ProductPatch{
		Name:         u.Name,
		Description:  u.Description,
		Manufacturer: u.Manufacturer,
		Model:        u.Model,
		SerialNumber: u.SerialNumber,
		Category:     u.Category,
		Tags:         u.Tags,
		ImageURL:     u.ImageURL,
	}
	if u.Components != nil {
		components := make([]model.Component, 0, len(*u.Components))
		for _, c := range *u.Components {
			components = append(components, c.ToModel())
		}
		patch.Components = &components
	}
	return patch
}
