package domain

import "github.com/shopspring/decimal"

// Product is the single item sold by the storefront. It is built once at
// startup and never mutated afterwards.
type Product struct {
	CompanyName string          `json:"company_name"`
	Color       string          `json:"color"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"` // percent
	OldPrice    decimal.Decimal `json:"old_price"`
	Images      []string        `json:"images"`
	Thumbnails  []string        `json:"thumbnails"`
}

// GallerySize returns the number of images in the product gallery.
func (p Product) GallerySize() int {
	return len(p.Images)
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	c.Images = append([]string(nil), p.Images...)
	c.Thumbnails = append([]string(nil), p.Thumbnails...)
	return c
}

// FormatPrice renders whole amounts without cents ("$375") and fractional
// amounts with two decimals ("$12.50").
func FormatPrice(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return "$" + d.Truncate(0).String()
	}
	return "$" + d.StringFixed(2)
}
