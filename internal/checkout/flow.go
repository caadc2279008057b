package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/selector"
	"github.com/sakashimaa/storefront/internal/store"
	pkgdomain "github.com/sakashimaa/storefront/pkg/domain"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

var (
	ErrNotAtReview     = errors.New("order can only be placed from the review step")
	ErrSubmitInFlight  = errors.New("order submission already in flight")
	ErrInvalidStep     = errors.New("invalid checkout step transition")
	ErrAlreadyComplete = errors.New("checkout already submitted")
)

type Step string

const (
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepReview    Step = "review"
	StepSubmitted Step = "submitted"
)

var steps = []Step{StepShipping, StepPayment, StepReview, StepSubmitted}

func (s Step) index() int {
	for i, step := range steps {
		if step == s {
			return i
		}
	}
	return -1
}

func ParseStep(raw string) (Step, bool) {
	step := Step(strings.ToLower(raw))
	return step, step.index() >= 0
}

// fields on each step, as FormatValidationError path prefixes.
var stepFields = map[Step][]string{
	StepShipping: {"email", "shipping_address", "billing_address", "shipping_method"},
	StepPayment:  {"payment_method", "card"},
}

// State is what the checkout view renders.
type State struct {
	Step       Step              `json:"step"`
	Data       Data              `json:"data"`
	Submitting bool              `json:"submitting"`
	Error      string            `json:"error,omitempty"`
	Order      *domain.Order     `json:"order,omitempty"`
	Summary    selector.Summary  `json:"summary"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Flow drives the shipping -> payment -> review steps over one Data value and submits it once.
type Flow struct {
	mu         sync.Mutex
	step       Step
	data       Data
	submitting bool
	errMsg     string
	attemptKey string
	placed     *domain.Order

	validate *validator.Validate
	pricing  Pricing
	orders   *store.OrderStore
	cart     *store.CartStore
	deps     store.Deps
	now      func() time.Time
}

func NewFlow(pricing Pricing, orders *store.OrderStore, cart *store.CartStore, deps store.Deps) *Flow {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	f := &Flow{
		step:    StepShipping,
		data:    newData(),
		pricing: pricing,
		orders:  orders,
		cart:    cart,
		deps:    deps,
		now:     time.Now,
	}
	f.validate = NewValidator(pricing.Shipping, func() time.Time { return f.now() })

	return f
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.step
}

func (f *Flow) Data() Data {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.data
}

// State snapshots the flow with display totals for cart. Inline errors are those of the
// current step only.
func (f *Flow) State(cart domain.Cart) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := State{
		Step:       f.step,
		Data:       f.data,
		Submitting: f.submitting,
		Error:      f.errMsg,
		Order:      f.placed,
		Summary:    selector.CartSummary(cart, f.data.ShippingMethod, f.pricing.Shipping, f.pricing.TaxRate),
	}
	if f.step != StepSubmitted {
		st.Errors = f.validateStep(f.data, f.step)
	}

	return st
}

// Update edits the form. Any edit starts a new submission attempt.
func (f *Flow) Update(fn func(d *Data)) error {
	return f.Edit(func(d *Data) error {
		fn(d)
		return nil
	})
}

// Edit runs fn on a copy of the form and keeps the copy only when fn succeeds.
func (f *Flow) Edit(fn func(d *Data) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step == StepSubmitted {
		return ErrAlreadyComplete
	}
	if f.submitting {
		return ErrSubmitInFlight
	}

	next := f.data
	if err := fn(&next); err != nil {
		return err
	}

	f.data = next
	f.attemptKey = ""
	return nil
}

// Prefill seeds empty shipping fields from the user profile and default address.
func (f *Flow) Prefill(user *domain.User, address *domain.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := &f.data
	if user != nil {
		if d.Email == "" {
			d.Email = user.Email
		}
		if d.ShippingAddress.FirstName == "" {
			d.ShippingAddress.FirstName = user.FirstName
		}
		if d.ShippingAddress.LastName == "" {
			d.ShippingAddress.LastName = user.LastName
		}
		if d.ShippingAddress.Phone == "" {
			d.ShippingAddress.Phone = user.Phone
		}
	}

	if address != nil && d.ShippingAddress.Line1 == "" {
		d.ShippingAddress = Address{
			FirstName:  address.FirstName,
			LastName:   address.LastName,
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			State:      address.State,
			PostalCode: address.PostalCode,
			Country:    address.Country,
			Phone:      address.Phone,
		}
	}
}

// Continue moves one step forward. Field errors are shown inline and never block it.
func (f *Flow) Continue() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping && f.step != StepPayment {
		return f.step, fmt.Errorf("%w: continue from %s", ErrInvalidStep, f.step)
	}

	f.step = steps[f.step.index()+1]
	return f.step, nil
}

func (f *Flow) Back() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment && f.step != StepReview {
		return f.step, fmt.Errorf("%w: back from %s", ErrInvalidStep, f.step)
	}
	if f.submitting {
		return f.step, ErrSubmitInFlight
	}

	f.step = steps[f.step.index()-1]
	return f.step, nil
}

// GoTo jumps back to an earlier step, e.g. the "edit" links on the review page.
func (f *Flow) GoTo(step Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if step.index() < 0 || step.index() >= f.step.index() || f.step == StepSubmitted {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStep, f.step, step)
	}
	if f.submitting {
		return ErrSubmitInFlight
	}

	f.step = step
	return nil
}

// ValidateStep returns the inline errors of one step; StepReview checks the whole form.
func (f *Flow) ValidateStep(step Step) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.validateStep(f.data, step)
}

func (f *Flow) validateStep(d Data, step Step) map[string]string {
	err := toValidationError(f.validate.Struct(&d))
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		return map[string]string{"_": err.Error()}
	}

	prefixes, ok := stepFields[step]
	if !ok {
		return verr.Fields
	}

	out := make(map[string]string)
	for field, msg := range verr.Fields {
		for _, p := range prefixes {
			if field == p || strings.HasPrefix(field, p+".") {
				out[field] = msg
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PlaceOrder validates the full form and performs the one create-order call. A failed attempt
// stays on review and may be resubmitted with the same idempotency key.
func (f *Flow) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if f.step != StepReview {
		f.mu.Unlock()
		return nil, ErrNotAtReview
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	if fields := f.validateStep(f.data, StepReview); len(fields) > 0 {
		f.errMsg = "Please correct the highlighted fields."
		f.mu.Unlock()
		return nil, &ValidationError{Fields: fields}
	}

	if f.attemptKey == "" {
		f.attemptKey = uuid.NewString()
	}
	key := f.attemptKey
	req := f.data.orderRequest()
	f.submitting = true
	f.errMsg = ""
	f.mu.Unlock()

	mylogger.Info(ctx, f.deps.Logger, "placing order", zap.String("idempotency_key", key))

	placed, err := f.orders.Place(ctx, req, key)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.errMsg = f.orders.State().Error
		f.mu.Unlock()
		return nil, err
	}

	f.step = StepSubmitted
	f.placed = placed
	f.data = newData()
	f.attemptKey = ""
	f.mu.Unlock()

	if f.cart != nil {
		_ = f.cart.Refresh(ctx)
	}

	if f.deps.UI != nil {
		f.deps.UI.PushToast(store.ToastSuccess, "Order placed. Thank you!")
	}
	if f.deps.Events != nil {
		f.deps.Events.Publish(ctx, pkgdomain.EventOrderPlaced, pkgdomain.OrderPlacedEvent{
			OrderID:     placed.ID,
			OrderNumber: placed.OrderNumber,
			Email:       req.Email,
			Total:       placed.Total.StringFixed(2),
			PlacedAt:    f.now(),
		})
	}

	return placed, nil
}

// Confirmation returns the placed order once the flow is submitted.
func (f *Flow) Confirmation() (*domain.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.placed, f.step == StepSubmitted
}

// Reset starts a new checkout.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.step = StepShipping
	f.data = newData()
	f.submitting = false
	f.errMsg = ""
	f.attemptKey = ""
	f.placed = nil
}
