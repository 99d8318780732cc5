package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is the state of one shopper's page view: what the page-level
// container owns plus the view-local state of the header and product view.
type Session struct {
	ID           string     `json:"id"`
	Quantity     int        `json:"quantity"`
	AddedProduct *CartEntry `json:"added_product,omitempty"`
	DisplayCart  bool       `json:"display_cart"`
	Gallery      Gallery    `json:"gallery"`
	Menu         Menu       `json:"menu"`
	ItemAdded    Banner     `json:"item_added"`
	ThankYou     Banner     `json:"thank_you"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.AddedProduct != nil {
		entry := *s.AddedProduct
		c.AddedProduct = &entry
	}
	return &c
}

func (s *Session) Touch(now time.Time) {
	s.Version++
	s.UpdatedAt = now
}

func (s *Session) IncrementQuantity() {
	s.Quantity++
}

// DecrementQuantity is a no-op at zero.
func (s *Session) DecrementQuantity() {
	if s.Quantity > 0 {
		s.Quantity--
	}
}

// AddToCart commits the product at the current quantity. A zero quantity
// clears any existing entry instead and shows no acknowledgment. The quantity
// itself is left as is, so a later add overwrites the entry rather than
// accumulating.
func (s *Session) AddToCart(p Product, now time.Time, ack time.Duration) bool {
	if s.Quantity == 0 {
		s.AddedProduct = nil
		return false
	}
	s.AddedProduct = &CartEntry{Title: p.Title, UnitPrice: p.Price}
	s.ItemAdded.Show(now, ack)
	return true
}

// RemoveCartItem clears the entry without touching the quantity.
func (s *Session) RemoveCartItem() {
	s.AddedProduct = nil
}

func (s *Session) ToggleCart() {
	s.DisplayCart = !s.DisplayCart
}

// DismissCart closes the cart panel if it is open.
func (s *Session) DismissCart() {
	s.DisplayCart = false
}

// Checkout closes the cart panel, clears the entry and shows the thank-you
// banner. The returned receipt carries the line as it was displayed.
func (s *Session) Checkout(now time.Time, ack time.Duration, resetQuantity bool) (Receipt, error) {
	if s.AddedProduct == nil {
		return Receipt{}, ErrEmptyCart
	}
	entry := *s.AddedProduct
	r := Receipt{
		SessionID: s.ID,
		Title:     entry.Title,
		UnitPrice: entry.UnitPrice,
		Quantity:  s.Quantity,
		Total:     entry.LineTotal(s.Quantity),
		Currency:  "USD",
		CreatedAt: now,
	}

	s.DisplayCart = false
	s.AddedProduct = nil
	if resetQuantity {
		s.Quantity = 0
	}
	s.ThankYou.Show(now, ack)
	return r, nil
}

// Remount resets the view-local state of the product view, as when the page
// is navigated to again.
func (s *Session) Remount() {
	s.Gallery.Reset()
}

func (s *Session) SelectCategory(name string, now time.Time, delay time.Duration) error {
	category, ok := LookupCategory(name)
	if !ok {
		return ErrUnknownCategory
	}
	s.Menu.ActiveCategory = category
	s.Menu.Close(now, delay)
	return nil
}

// CartView is the cart panel content for a non-empty cart.
type CartView struct {
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Thumbnail string          `json:"thumbnail"`
}

// View is the read model handed to the header and product views.
type View struct {
	SessionID         string    `json:"session_id"`
	Product           Product   `json:"product"`
	Quantity          int       `json:"quantity"`
	Cart              *CartView `json:"cart,omitempty"`
	CartOpen          bool      `json:"cart_open"`
	ShowBadge         bool      `json:"show_badge"`
	Badge             int       `json:"badge"`
	SliderIndex       int       `json:"slider_index"`
	SelectedThumbnail int       `json:"selected_thumbnail"`
	SliderImage       string    `json:"slider_image"`
	LargeImage        string    `json:"large_image"`
	Menu              MenuState `json:"menu"`
	ActiveCategory    string    `json:"active_category,omitempty"`
	Categories        []string  `json:"categories"`
	ItemAdded         bool      `json:"item_added"`
	ThankYou          bool      `json:"thank_you"`
}

// View evaluates s against p at the given instant.
func (s *Session) View(p Product, now time.Time) View {
	v := View{
		SessionID:         s.ID,
		Product:           p,
		Quantity:          s.Quantity,
		CartOpen:          s.DisplayCart,
		SliderIndex:       s.Gallery.SliderIndex,
		SelectedThumbnail: s.Gallery.SelectedThumbnail,
		Menu:              s.Menu.State(now),
		ActiveCategory:    s.Menu.ActiveCategory,
		Categories:        append([]string(nil), NavigationCategories...),
		ItemAdded:         s.ItemAdded.Visible(now),
		ThankYou:          s.ThankYou.Visible(now),
	}
	if i := s.Gallery.SliderIndex; i >= 0 && i < len(p.Images) {
		v.SliderImage = p.Images[i]
	}
	if i := s.Gallery.SelectedThumbnail; i >= 0 && i < len(p.Images) {
		v.LargeImage = p.Images[i]
	}
	if s.AddedProduct != nil {
		v.ShowBadge = true
		v.Badge = s.Quantity
		cv := &CartView{
			Title:     s.AddedProduct.Title,
			UnitPrice: s.AddedProduct.UnitPrice,
			Quantity:  s.Quantity,
			LineTotal: s.AddedProduct.LineTotal(s.Quantity),
		}
		if len(p.Thumbnails) > 0 {
			cv.Thumbnail = p.Thumbnails[0]
		}
		v.Cart = cv
	}
	return v
}
