package server

import (
	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
	"dealfeed/internal/validation"
)

// GetShoppingLists returns the calling user's lists, newest first, each
// decorated with its items.
func (s *Server) GetShoppingLists(c *fiber.Ctx) error {
	lists, err := s.store.ListShoppingLists(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(lists)
}

// GetShoppingList returns one decorated list.
func (s *Server) GetShoppingList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	list, err := s.store.GetShoppingList(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if list == nil {
		return respondError(c, models.NewNotFoundError("shopping list", id))
	}
	return c.JSON(list)
}

type createListRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	IsShared bool   `json:"isShared"`
}

// CreateShoppingList creates a list owned by the calling user.
func (s *Server) CreateShoppingList(c *fiber.Ctx) error {
	var req createListRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	list := &models.ShoppingList{
		Name:     req.Name,
		UserID:   callerID(c),
		IsShared: req.IsShared,
	}
	if err := s.store.CreateShoppingList(c.UserContext(), list); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

// UpdateShoppingList applies a partial update to a list. Absent fields
// stay untouched.
func (s *Server) UpdateShoppingList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var updates models.ShoppingListUpdate
	if err := c.BodyParser(&updates); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	list, err := s.store.UpdateShoppingList(c.UserContext(), id, updates)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if list == nil {
		return respondError(c, models.NewNotFoundError("shopping list", id))
	}
	return c.JSON(list)
}

// DeleteShoppingList removes a list along with its items and share grants.
func (s *Server) DeleteShoppingList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	deleted, err := s.store.DeleteShoppingList(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if !deleted {
		return respondError(c, models.NewNotFoundError("shopping list", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetShoppingListItems returns a list's items, newest first.
func (s *Server) GetShoppingListItems(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	items, err := s.store.ListShoppingListItems(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(items)
}

type createItemRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	Quantity int     `json:"quantity" validate:"omitempty,min=1"`
	Price    *string `json:"price"`
	Category *string `json:"category"`
	Barcode  *string `json:"barcode"`
}

// CreateShoppingListItem adds an item to an existing list.
func (s *Server) CreateShoppingListItem(c *fiber.Ctx) error {
	listID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req createItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	list, err := s.store.GetShoppingList(c.UserContext(), listID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if list == nil {
		return respondError(c, models.NewNotFoundError("shopping list", listID))
	}

	item := &models.ShoppingListItem{
		ListID:   listID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Category: req.Category,
		Barcode:  req.Barcode,
	}
	if err := s.store.CreateShoppingListItem(c.UserContext(), item); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateShoppingListItem applies a partial update to an item.
func (s *Server) UpdateShoppingListItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var updates models.ShoppingListItemUpdate
	if err := c.BodyParser(&updates); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(updates); err != nil {
		return respondError(c, err)
	}

	item, err := s.store.UpdateShoppingListItem(c.UserContext(), id, updates)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if item == nil {
		return respondError(c, models.NewNotFoundError("shopping list item", id))
	}
	return c.JSON(item)
}

// DeleteShoppingListItem removes an item by id.
func (s *Server) DeleteShoppingListItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	deleted, err := s.store.DeleteShoppingListItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if !deleted {
		return respondError(c, models.NewNotFoundError("shopping list item", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type shareListRequest struct {
	SharedWithUserID string `json:"sharedWithUserId" validate:"required"`
	CanEdit          bool   `json:"canEdit"`
}

// ShareShoppingList grants another user access to a list.
func (s *Server) ShareShoppingList(c *fiber.Ctx) error {
	listID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req shareListRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	list, err := s.store.GetShoppingList(c.UserContext(), listID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if list == nil {
		return respondError(c, models.NewNotFoundError("shopping list", listID))
	}

	grant, err := s.store.ShareShoppingList(c.UserContext(), listID, req.SharedWithUserID, req.CanEdit)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(grant)
}

// GetSharedLists returns the decorated lists shared with the calling user.
func (s *Server) GetSharedLists(c *fiber.Ctx) error {
	lists, err := s.store.ListSharedLists(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(lists)
}
