package selector

import "github.com/sakashimaa/storefront/internal/domain"

func FilterProducts(items []domain.ProductListItem, keep func(domain.ProductListItem) bool) []domain.ProductListItem {
	out := make([]domain.ProductListItem, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func InStock(item domain.ProductListItem) bool {
	return item.InStock
}

// ProductDiscount is CalculateDiscount for a catalog item, honoring a variant price override.
func ProductDiscount(p *domain.ProductWithRelations, variant *domain.ProductVariant) *int {
	price := p.EffectivePrice(variant)
	return CalculateDiscount(&price, p.ComparePrice)
}
