// Package catalog holds the one product the storefront sells.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

var product = domain.Product{
	CompanyName: "SNEAKER COMPANY",
	Color:       "#FF7E1B",
	Title:       "Fall Limited Edition Sneakers",
	Description: "These low-profile sneakers are your perfect casual wear companion. " +
		"Featuring a durable rubber outer sole, they'll withstand everything the weather can offer.",
	Price:    decimal.NewFromInt(125),
	Discount: 50,
	OldPrice: decimal.NewFromInt(250),
	Images: []string{
		"/images/image-product-1.jpg",
		"/images/image-product-2.jpg",
		"/images/image-product-3.jpg",
		"/images/image-product-4.jpg",
	},
	Thumbnails: []string{
		"/images/image-product-1-thumbnail.jpg",
		"/images/image-product-2-thumbnail.jpg",
		"/images/image-product-3-thumbnail.jpg",
		"/images/image-product-4-thumbnail.jpg",
	},
}

// Product returns a copy of the catalog product.
func Product() domain.Product {
	return product.Clone()
}
