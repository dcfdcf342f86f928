package server

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
	"dealfeed/internal/validation"
)

// GetStores returns every known grocery store.
func (s *Server) GetStores(c *fiber.Ctx) error {
	stores, err := s.store.ListStores(c.UserContext())
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(stores)
}

// GetStore returns one store by id.
func (s *Server) GetStore(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	store, err := s.store.GetStore(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if store == nil {
		return respondError(c, models.NewNotFoundError("store", id))
	}
	return c.JSON(store)
}

// GetCategories returns every deal category.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.store.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(categories)
}

type scanBarcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,min=8,max=14"`
}

// ScanBarcode resolves a barcode to product details. There is no real
// product database behind this; it answers with generated but stable
// data so clients can prefill shopping list items.
func (s *Server) ScanBarcode(c *fiber.Ctx) error {
	var req scanBarcodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	// Seed the generator from the barcode so rescanning the same code
	// returns the same product.
	var seed int64
	for _, ch := range req.Barcode {
		seed = seed*31 + int64(ch)
	}
	faker := gofakeit.New(seed)

	return c.JSON(fiber.Map{
		"barcode":  req.Barcode,
		"name":     faker.ProductName(),
		"price":    fmt.Sprintf("$%.2f", faker.Price(0.5, 25)),
		"category": faker.ProductCategory(),
	})
}
