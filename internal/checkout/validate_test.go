package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ValidateSuite struct {
	suite.Suite
}

func (s *ValidateSuite) TestCardNumber() {
	cases := map[string]bool{
		"4242424242424242":    true,
		"4242 4242 4242 4242": true,
		"5555-5555-5555-4444": true,
		"4242424242424241":    false,
		"4242":                false,
		"42424242424242a2":    false,
		"":                    false,
	}

	for number, want := range cases {
		s.Require().Equal(want, validCardNumber(number), number)
	}
}

func (s *ValidateSuite) TestExpiry() {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	s.Require().True(validExpiry("10/26", now))
	s.Require().True(validExpiry("01/27", now))
	s.Require().False(validExpiry("09/26", now))
	s.Require().False(validExpiry("12/25", now))
	s.Require().False(validExpiry("13/27", now))
	s.Require().False(validExpiry("1/27", now))
}

func (s *ValidateSuite) TestPricingOverrides() {
	p := NewPricing(0.1, map[string]float64{"express": 9.5, "pickup": 0})

	s.Require().Equal("9.50", p.Shipping["express"].StringFixed(2))
	s.Require().Equal("5.99", p.Shipping["standard"].StringFixed(2))
	s.Require().True(p.Shipping["pickup"].IsZero())
	s.Require().Equal("0.1", p.TaxRate.String())

	s.Require().Equal("0.08", NewPricing(0, nil).TaxRate.String())
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}
