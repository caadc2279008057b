package selector

import (
	"testing"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type SelectorSuite struct {
	suite.Suite
}

func (s *SelectorSuite) TestCalculateDiscount() {
	pct := CalculateDiscount(decPtr("80"), decPtr("100"))
	s.Require().NotNil(pct)
	s.Require().Equal(20, *pct)

	pct = CalculateDiscount(decPtr("19.99"), decPtr("29.99"))
	s.Require().NotNil(pct)
	s.Require().Equal(33, *pct)
}

func (s *SelectorSuite) TestCalculateDiscountWithoutSaving() {
	s.Require().Nil(CalculateDiscount(nil, decPtr("100")))
	s.Require().Nil(CalculateDiscount(decPtr("80"), nil))
	s.Require().Nil(CalculateDiscount(decPtr("100"), decPtr("100")))
	s.Require().Nil(CalculateDiscount(decPtr("120"), decPtr("100")))
}

func (s *SelectorSuite) TestDisplaySubtotalPrefersBackend() {
	cart := domain.Cart{Items: []domain.CartItem{
		{ID: "a", Quantity: 2, UnitPrice: dec("10.00")},
		{ID: "b", Quantity: 1, UnitPrice: dec("4.50")},
	}}

	s.Require().True(DisplaySubtotal(cart).Equal(dec("24.50")))
	s.Require().Equal(3, ItemCount(cart))

	cart.Subtotal = decPtr("22.00")
	s.Require().True(DisplaySubtotal(cart).Equal(dec("22.00")))
}

func (s *SelectorSuite) TestCartSummary() {
	cart := domain.Cart{
		Items:    []domain.CartItem{{ID: "a", Quantity: 2, UnitPrice: dec("25.00")}},
		Discount: decPtr("5.00"),
	}
	table := ShippingTable{"standard": dec("5.99"), "express": dec("12.99")}

	sum := CartSummary(cart, "express", table, dec("0.08"))
	s.Require().Equal(2, sum.ItemCount)
	s.Require().True(sum.Subtotal.Equal(dec("50.00")))
	s.Require().True(sum.Shipping.Equal(dec("12.99")))
	s.Require().True(sum.Tax.Equal(dec("4.00")))
	s.Require().True(sum.Total.Equal(dec("61.99")))

	sum = CartSummary(cart, "teleport", table, dec("0.08"))
	s.Require().True(sum.Shipping.IsZero())
}

func (s *SelectorSuite) TestCartSummaryNeverNegative() {
	cart := domain.Cart{
		Items:    []domain.CartItem{{ID: "a", Quantity: 1, UnitPrice: dec("3.00")}},
		Discount: decPtr("50.00"),
	}

	sum := CartSummary(cart, "", ShippingTable{}, decimal.Zero)
	s.Require().True(sum.Total.IsZero())
}

func (s *SelectorSuite) TestShippingMethodsSorted() {
	table := ShippingTable{"overnight": dec("19.99"), "express": dec("12.99"), "standard": dec("5.99")}
	s.Require().Equal([]string{"express", "overnight", "standard"}, table.Methods())
}

func (s *SelectorSuite) TestProductDiscountUsesVariantPrice() {
	p := &domain.ProductWithRelations{Product: domain.Product{
		ID:           "p1",
		Price:        dec("90"),
		ComparePrice: decPtr("100"),
	}}

	s.Require().Equal(10, *ProductDiscount(p, nil))

	variant := &domain.ProductVariant{ID: "v1", Price: decPtr("75")}
	s.Require().Equal(25, *ProductDiscount(p, variant))
}

func (s *SelectorSuite) TestFilterInStock() {
	items := []domain.ProductListItem{
		{ID: "1", InStock: true},
		{ID: "2"},
		{ID: "3", InStock: true},
	}

	out := FilterProducts(items, InStock)
	s.Require().Len(out, 2)
	s.Require().Equal("3", out[1].ID)
}

type countingSource struct {
	snap store.Snapshot[domain.Cart]
}

func (c *countingSource) State() store.Snapshot[domain.Cart] { return c.snap }
func (c *countingSource) Version() uint64                    { return c.snap.Version }

func (s *SelectorSuite) TestMemoRecomputesOnVersionChange() {
	calls := 0
	memo := NewMemo(func(c domain.Cart) int {
		calls++
		return ItemCount(c)
	})

	src := &countingSource{snap: store.Snapshot[domain.Cart]{
		Value:   domain.Cart{Items: []domain.CartItem{{ID: "a", Quantity: 2}}},
		Version: 1,
	}}

	s.Require().Equal(2, memo.Get(src))
	s.Require().Equal(2, memo.Get(src))
	s.Require().Equal(1, calls)

	src.snap = store.Snapshot[domain.Cart]{
		Value:   domain.Cart{Items: []domain.CartItem{{ID: "a", Quantity: 5}}},
		Version: 2,
	}
	s.Require().Equal(5, memo.Get(src))
	s.Require().Equal(2, calls)
}

func TestSelectorSuite(t *testing.T) {
	suite.Run(t, new(SelectorSuite))
}
