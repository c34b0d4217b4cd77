package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/model"
	"github.com/transpass/transpass/internal/platform"
)

var validate = validator.New()

const productColumns = `id, name, description, manufacturer, model, serial_number, category, tags,
	image_url, components, created_by, company_id, created_at, updated_at`

type ProductService struct {
	db    DB
	blobs *blobUploader
	now   func() time.Time
}

func NewProductService(db DB, blobs BlobStore) *ProductService {
	return &ProductService{
		db:    db,
		blobs: newBlobUploader(blobs),
		now:   time.Now,
	}
}

// ProductPatch carries the fields of a partial product update. Nil fields
// are left unchanged.
type ProductPatch struct {
	Name         *string
	Description  *string
	Manufacturer *string
	Model        *string
	SerialNumber *string
	Category     *string
	Tags         *[]string
	ImageURL     *string
	Components   *[]model.Component
}

// Get returns the product with the given ID, or nil if it does not exist.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("product_id", id).Msg("product lookup failed")
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// Create validates and stores a new product owned by p.CreatedBy. When image
// is set it is uploaded first and its URL replaces p.ImageURL.
func (s *ProductService) Create(ctx context.Context, p *model.Product, image *Upload) (*model.Product, error) {
	if p.CreatedBy == "" {
		return nil, fmt.Errorf("%w: product owner is required", ErrValidation)
	}
	for i := range p.Components {
		p.Components[i].ID = ""
	}
	normalizeProduct(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	imageKey, err := s.uploadImage(ctx, p, image)
	if err != nil {
		return nil, err
	}

	components, err := json.Marshal(p.Components)
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, fmt.Errorf("marshal components: %w", err)
	}

	p.ID = platform.NewID()
	err = s.db.QueryRow(ctx,
		`INSERT INTO products (id, name, description, manufacturer, model, serial_number, category, tags,
		                       image_url, components, created_by, company_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Manufacturer, p.Model, p.SerialNumber, p.Category, p.Tags,
		p.ImageURL, components, p.CreatedBy, p.CompanyID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, fmt.Errorf("insert product: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("product_id", p.ID).Str("owner", p.CreatedBy).Msg("product created")
	return p, nil
}

// Update applies patch to the product. The owner never changes. A component
// list in the patch replaces the current one: entries carrying the ID of an
// existing component keep it, entries without one get a new ID. A new image,
// when given, is uploaded with the same retry policy as on create.
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch, image *Upload) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	if patch.Components != nil {
		for _, c := range *patch.Components {
			if c.ID != "" && p.FindComponent(c.ID) < 0 {
				return nil, fmt.Errorf("%w: product %s has no component %s", ErrValidation, id, c.ID)
			}
		}
	}

	applyPatch(p, patch)
	normalizeProduct(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	imageKey, err := s.uploadImage(ctx, p, image)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, p); err != nil {
		s.discardImage(ctx, imageKey)
		return nil, err
	}
	return p, nil
}

// uploadImage stores image, when set, and points p.ImageURL at it. It
// returns the object key so a failed write can remove the upload again.
func (s *ProductService) uploadImage(ctx context.Context, p *model.Product, image *Upload) (string, error) {
	if image == nil {
		return "", nil
	}
	key := productImageKey(s.now(), image.Filename)
	url, err := s.blobs.put(ctx, key, image.ContentType, image.Data)
	if err != nil {
		return "", fmt.Errorf("upload product image: %w", err)
	}
	p.ImageURL = url
	return key, nil
}

// discardImage removes an image uploaded for a write that did not happen.
func (s *ProductService) discardImage(ctx context.Context, key string) {
	if key != "" {
		s.blobs.delete(ctx, key)
	}
}

// Delete removes the product and, best effort, its stored QR code.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	s.blobs.delete(ctx, qrCodeKey(id))
	zerolog.Ctx(ctx).Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// AddComponent appends c to the product under a freshly generated ID.
func (s *ProductService) AddComponent(ctx context.Context, productID string, c model.Component) (*model.Product, error) {
	return s.mutateComponents(ctx, productID, func(p *model.Product) error {
		if len(p.Components) >= model.MaxComponents {
			return componentCapError()
		}
		c.ID = platform.NewID()
		p.Components = append(p.Components, c)
		return nil
	})
}

// UpdateComponent replaces the component with the given ID, keeping its ID.
func (s *ProductService) UpdateComponent(ctx context.Context, productID, componentID string, c model.Component) (*model.Product, error) {
	return s.mutateComponents(ctx, productID, func(p *model.Product) error {
		idx := p.FindComponent(componentID)
		if idx < 0 {
			return fmt.Errorf("component %s: %w", componentID, ErrNotFound)
		}
		c.ID = componentID
		p.Components[idx] = c
		return nil
	})
}

// DeleteComponent removes the component with the given ID.
func (s *ProductService) DeleteComponent(ctx context.Context, productID, componentID string) (*model.Product, error) {
	return s.mutateComponents(ctx, productID, func(p *model.Product) error {
		idx := p.FindComponent(componentID)
		if idx < 0 {
			return fmt.Errorf("component %s: %w", componentID, ErrNotFound)
		}
		p.Components = append(p.Components[:idx], p.Components[idx+1:]...)
		return nil
	})
}

func (s *ProductService) mutateComponents(ctx context.Context, productID string, fn func(p *model.Product) error) (*model.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	normalizeProduct(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// save writes p back, guarded by the updated_at value it was read with. A
// concurrent writer having moved updated_at makes the write fail with
// ErrConflict instead of silently overwriting their change.
func (s *ProductService) save(ctx context.Context, p *model.Product) error {
	components, err := json.Marshal(p.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}

	var updatedAt time.Time
	err = s.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, manufacturer = $4, model = $5, serial_number = $6,
		     category = $7, tags = $8, image_url = $9, components = $10, updated_at = now()
		 WHERE id = $1 AND updated_at = $11
		 RETURNING updated_at`,
		p.ID, p.Name, p.Description, p.Manufacturer, p.Model, p.SerialNumber,
		p.Category, p.Tags, p.ImageURL, components, p.UpdatedAt,
	).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product %s was modified concurrently: %w", p.ID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}

	p.UpdatedAt = updatedAt
	return nil
}

func applyPatch(p *model.Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Manufacturer != nil {
		p.Manufacturer = *patch.Manufacturer
	}
	if patch.Model != nil {
		p.Model = *patch.Model
	}
	if patch.SerialNumber != nil {
		if *patch.SerialNumber == "" {
			p.SerialNumber = nil
		} else {
			p.SerialNumber = patch.SerialNumber
		}
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Components != nil {
		p.Components = *patch.Components
	}
}

// normalizeProduct trims text fields, replaces nil slices and gives every
// component without one a stable ID.
func normalizeProduct(p *model.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Components == nil {
		p.Components = []model.Component{}
	}
	for i := range p.Components {
		if p.Components[i].ID == "" {
			p.Components[i].ID = platform.NewID()
		}
	}
}

func validateProduct(p *model.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if len(p.Components) > model.MaxComponents {
		return componentCapError()
	}
	seen := make(map[string]bool, len(p.Components))
	for i := range p.Components {
		if err := validate.Struct(&p.Components[i]); err != nil {
			return fmt.Errorf("%w: component %d: %s", ErrValidation, i+1, err.Error())
		}
		if seen[p.Components[i].ID] {
			return fmt.Errorf("%w: duplicate component id %s", ErrValidation, p.Components[i].ID)
		}
		seen[p.Components[i].ID] = true
	}
	return nil
}

func componentCapError() error {
	return fmt.Errorf("%w: a product can have at most %d components", ErrValidation, model.MaxComponents)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p          model.Product
		components []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Manufacturer, &p.Model, &p.SerialNumber,
		&p.Category, &p.Tags, &p.ImageURL, &components, &p.CreatedBy, &p.CompanyID,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}

	if len(components) > 0 {
		if err := json.Unmarshal(components, &p.Components); err != nil {
			return p, fmt.Errorf("decode components of product %s: %w", p.ID, err)
		}
	}
	if p.Components == nil {
		p.Components = []model.Component{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
