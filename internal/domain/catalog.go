package domain

type Category struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Brand struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Slug    string `json:"slug" validate:"required"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Page is the paginated list envelope used by the backend.
type Page[T any] struct {
	Items []T `json:"items" validate:"dive"`
	Total int `json:"total" validate:"gte=0"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Page[T]) HasNext() bool {
	return p.Limit > 0 && p.Page*p.Limit < p.Total
}
