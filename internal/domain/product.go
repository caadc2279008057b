package domain

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

type ProductImage struct {
	ID        string `json:"id"`
	URL       string `json:"url" validate:"required"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductVariant overrides price and stock of its product for one attribute combination,
// e.g. color=red, size=M.
type ProductVariant struct {
	ID            string            `json:"id" validate:"required"`
	ProductID     string            `json:"product_id"`
	SKU           string            `json:"sku,omitempty"`
	Price         *decimal.Decimal  `json:"price,omitempty"`
	StockQuantity *int              `json:"stock_quantity,omitempty"`
	Attributes    map[string]string `json:"attributes"`
}

// Matches reports whether every requested attribute has the same value on the variant.
func (v ProductVariant) Matches(attrs map[string]string) bool {
	for name, value := range attrs {
		if v.Attributes[name] != value {
			return false
		}
	}

	return true
}

func (v ProductVariant) InStock() bool {
	return v.StockQuantity == nil || *v.StockQuantity > 0
}

type ProductListItem struct {
	ID           string           `json:"id" validate:"required"`
	Name         string           `json:"name" validate:"required"`
	Slug         string           `json:"slug" validate:"required"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	InStock      bool             `json:"in_stock"`
	ImageURL     string           `json:"image_url,omitempty"`
	CategoryID   string           `json:"category_id,omitempty"`
	BrandID      string           `json:"brand_id,omitempty"`
	IsFeatured   bool             `json:"is_featured"`
}

type Product struct {
	ID            string           `json:"id" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	Slug          string           `json:"slug" validate:"required"`
	Description   string           `json:"description,omitempty"`
	SKU           string           `json:"sku,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	ComparePrice  *decimal.Decimal `json:"compare_price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	InStock       bool             `json:"in_stock"`
	Images        []ProductImage   `json:"images,omitempty" validate:"dive"`
	CategoryID    string           `json:"category_id,omitempty"`
	BrandID       string           `json:"brand_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductWithRelations is the detail-page shape: the product plus its category, brand and
// variants.
type ProductWithRelations struct {
	Product
	Category *Category       `json:"category,omitempty"`
	Brand    *Brand          `json:"brand,omitempty"`
	Variants []ProductVariant `json:"variants,omitempty" validate:"dive"`
}

func (p ProductWithRelations) Clone() ProductWithRelations {
	out := p
	if p.Images != nil {
		out.Images = append([]ProductImage(nil), p.Images...)
	}
	if p.Variants != nil {
		out.Variants = make([]ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			v.Attributes = maps.Clone(v.Attributes)
			out.Variants[i] = v
		}
	}

	return out
}

// FindVariant returns the first variant matching attrs, or nil.
func (p *ProductWithRelations) FindVariant(attrs map[string]string) *ProductVariant {
	if len(attrs) == 0 {
		return nil
	}

	for i := range p.Variants {
		if p.Variants[i].Matches(attrs) {
			return &p.Variants[i]
		}
	}

	return nil
}

// EffectivePrice is the variant price when the variant overrides it, the product price otherwise.
func (p *Product) EffectivePrice(variant *ProductVariant) decimal.Decimal {
	if variant != nil && variant.Price != nil {
		return *variant.Price
	}

	return p.Price
}

func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}

	return ""
}

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortPopular   ProductSort = "popular"
)

// ProductFilter holds the query parameters of the product listing.
type ProductFilter struct {
	Page       int              `query:"page" validate:"gte=0"`
	Limit      int              `query:"limit" validate:"gte=0,lte=100"`
	CategoryID string           `query:"category_id"`
	BrandID    string           `query:"brand_id"`
	MinPrice   *decimal.Decimal `query:"min_price"`
	MaxPrice   *decimal.Decimal `query:"max_price"`
	Sort       ProductSort      `query:"sort" validate:"omitempty,oneof=newest price_asc price_desc popular"`
	InStock    bool             `query:"in_stock"`
}
