package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
	"dealfeed/internal/validation"
)

// GetDeals returns the composed deal feed, newest first, with IsLiked
// resolved for the calling user.
func (s *Server) GetDeals(c *fiber.Ctx) error {
	deals, err := s.dealService.ListDealsForUser(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deals)
}

// GetDeal returns one composed deal view.
func (s *Server) GetDeal(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	deal, err := s.dealService.GetDealForUser(c.UserContext(), id, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deal)
}

type createDealRequest struct {
	UserID          string     `json:"userId"`
	StoreID         uint       `json:"storeId" validate:"required"`
	CategoryID      uint       `json:"categoryId" validate:"required"`
	Title           string     `json:"title" validate:"required,min=3,max=120"`
	Description     string     `json:"description" validate:"max=2000"`
	OriginalPrice   *string    `json:"originalPrice"`
	SalePrice       *string    `json:"salePrice"`
	DiscountPercent *int       `json:"discountPercent" validate:"omitempty,min=0,max=100"`
	ImageURL        string     `json:"imageUrl"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// CreateDeal posts a new deal authored by the calling user.
func (s *Server) CreateDeal(c *fiber.Ctx) error {
	var req createDealRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	// Identity may arrive in the body or as the userId query parameter.
	author := req.UserID
	if author == "" {
		author = callerID(c)
	}

	deal := &models.Deal{
		UserID:          author,
		StoreID:         req.StoreID,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		SalePrice:       req.SalePrice,
		DiscountPercent: req.DiscountPercent,
		ImageURL:        req.ImageURL,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.dealService.CreateDeal(c.UserContext(), deal); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(deal)
}

// ToggleLike flips the calling user's like on a deal and returns the
// refreshed deal plus the resulting liked state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		UserID string `json:"userId"`
	}
	// Body is optional; userId may come as a query parameter instead.
	_ = c.BodyParser(&body)
	user := body.UserID
	if user == "" {
		user = callerID(c)
	}

	deal, liked, err := s.dealService.ToggleLike(c.UserContext(), id, user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"deal":  deal,
		"liked": liked,
	})
}

// GetComments returns a deal's comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	comments, err := s.store.ListComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(comments)
}

type createCommentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CreateComment adds a comment to a deal.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	author := req.UserID
	if author == "" {
		author = callerID(c)
	}

	comment := &models.Comment{
		DealID:  id,
		UserID:  author,
		Content: req.Content,
	}
	if err := s.dealService.AddComment(c.UserContext(), comment); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment removes a comment by id.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	deleted, err := s.store.DeleteComment(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if !deleted {
		return respondError(c, models.NewNotFoundError("comment", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
