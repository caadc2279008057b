package checkout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/service"
	"github.com/sakashimaa/storefront/pkg/utils"
)

var (
	cvcPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	postalPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{1,8}[A-Za-z0-9]$`)
)

// ValidationError carries inline messages keyed by field path, e.g. "card.number".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout form has %d invalid field(s)", len(e.Fields))
}

// NewValidator returns a validator with the checkout rules registered. shipping lists the
// accepted shipping methods.
func NewValidator(shipping ShippingTable, now func() time.Time) *validator.Validate {
	v := service.NewValidator()

	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return validCardNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("cvc", func(fl validator.FieldLevel) bool {
		return cvcPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return validExpiry(fl.Field().String(), now())
	})
	_ = v.RegisterValidation("postal", func(fl validator.FieldLevel) bool {
		return postalPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		validateData(sl, shipping)
	}, Data{})

	return v
}

// validateData holds the cross-field rules: card details for credit cards, a separate billing
// address when it differs from shipping, and a shipping method the table knows.
func validateData(sl validator.StructLevel, shipping ShippingTable) {
	d := sl.Current().Interface().(Data)

	if d.PaymentMethod == PaymentCreditCard {
		if d.Card.Number == "" {
			sl.ReportError(d.Card.Number, "card.number", "Number", "required", "")
		}
		if d.Card.Name == "" {
			sl.ReportError(d.Card.Name, "card.name", "Name", "required", "")
		}
		if d.Card.Expiry == "" {
			sl.ReportError(d.Card.Expiry, "card.expiry", "Expiry", "required", "")
		}
		if d.Card.CVC == "" {
			sl.ReportError(d.Card.CVC, "card.cvc", "CVC", "required", "")
		}
	}

	if !d.BillingSameAsShipping {
		if err := sl.Validator().Struct(d.BillingAddress); err != nil {
			if fieldErrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range fieldErrs {
					sl.ReportError(fe.Value(), "billing_address."+fe.Field(), fe.StructField(), fe.Tag(), fe.Param())
				}
			}
		}
	}

	if d.ShippingMethod != "" {
		if _, ok := shipping.Cost(d.ShippingMethod); !ok {
			sl.ReportError(d.ShippingMethod, "shipping_method", "ShippingMethod", "oneof", strings.Join(shipping.Methods(), " "))
		}
	}
}

func validCardNumber(raw string) bool {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		ch := digits[i]
		if ch < '0' || ch > '9' {
			return false
		}

		n := int(ch - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}

	return sum%10 == 0
}

// validExpiry accepts MM/YY up to and including the current month.
func validExpiry(raw string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(raw)
	if m == nil {
		return false
	}

	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	year += 2000

	if year != now.Year() {
		return year > now.Year()
	}
	return month >= int(now.Month())
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(validator.ValidationErrors); !ok {
		return err
	}

	return &ValidationError{Fields: utils.FormatValidationError(err)}
}
