package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Flag string

const (
	FlagCartDrawer    Flag = "cart_drawer"
	FlagMobileMenu    Flag = "mobile_menu"
	FlagSearch        Flag = "search"
	FlagFilters       Flag = "filters"
	FlagLoginRequired Flag = "login_required"
)

var knownFlags = []Flag{FlagCartDrawer, FlagMobileMenu, FlagSearch, FlagFilters, FlagLoginRequired}

func ParseFlag(name string) (Flag, bool) {
	for _, f := range knownFlags {
		if string(f) == strings.ToLower(name) {
			return f, true
		}
	}

	return "", false
}

type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	ID        string    `json:"id"`
	Kind      ToastKind `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const defaultMaxToasts = 5

// UIState is transient presentation state; it is never persisted.
type UIState struct {
	Flags  map[Flag]bool `json:"flags"`
	Toasts []Toast       `json:"toasts"`
}

type UIStore struct {
	*container[UIState]
	maxToasts int
	now       func() time.Time
}

func NewUIStore(maxToasts int) *UIStore {
	if maxToasts <= 0 {
		maxToasts = defaultMaxToasts
	}

	initial := UIState{Flags: make(map[Flag]bool, len(knownFlags))}
	for _, f := range knownFlags {
		initial.Flags[f] = false
	}

	return &UIStore{
		container: newContainer(initial, cloneUI),
		maxToasts: maxToasts,
		now:       time.Now,
	}
}

func cloneUI(s UIState) UIState {
	out := UIState{Flags: make(map[Flag]bool, len(s.Flags))}
	for k, v := range s.Flags {
		out.Flags[k] = v
	}
	out.Toasts = append([]Toast(nil), s.Toasts...)
	return out
}

func (u *UIStore) Open(f Flag) {
	u.setFlag(f, func(bool) bool { return true })
}

func (u *UIStore) Close(f Flag) {
	u.setFlag(f, func(bool) bool { return false })
}

func (u *UIStore) Toggle(f Flag) bool {
	var open bool
	u.setFlag(f, func(cur bool) bool {
		open = !cur
		return open
	})
	return open
}

func (u *UIStore) IsOpen(f Flag) bool {
	u.container.mu.RLock()
	defer u.container.mu.RUnlock()

	return u.container.value.Flags[f]
}

func (u *UIStore) setFlag(f Flag, next func(bool) bool) {
	u.update(func(s *Snapshot[UIState]) {
		flags := make(map[Flag]bool, len(s.Value.Flags))
		for k, v := range s.Value.Flags {
			flags[k] = v
		}
		flags[f] = next(flags[f])
		s.Value.Flags = flags
	})
}

// PushToast appends a toast, dropping the oldest ones beyond the queue bound.
func (u *UIStore) PushToast(kind ToastKind, message string) Toast {
	toast := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: u.now(),
	}

	u.update(func(s *Snapshot[UIState]) {
		toasts := append(append([]Toast(nil), s.Value.Toasts...), toast)
		if over := len(toasts) - u.maxToasts; over > 0 {
			toasts = toasts[over:]
		}
		s.Value.Toasts = toasts
	})

	return toast
}

func (u *UIStore) DismissToast(id string) bool {
	found := false
	u.update(func(s *Snapshot[UIState]) {
		toasts := make([]Toast, 0, len(s.Value.Toasts))
		for _, t := range s.Value.Toasts {
			if t.ID == id {
				found = true
				continue
			}
			toasts = append(toasts, t)
		}
		s.Value.Toasts = toasts
	})

	return found
}

func (u *UIStore) Toasts() []Toast {
	return u.State().Value.Toasts
}
