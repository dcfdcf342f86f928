package server

import (
	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
	"dealfeed/internal/service"
	"dealfeed/internal/validation"
)

// Signup registers a new user.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return respondError(c, err)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUserProfile returns a user's profile with live follow counts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	viewer := ""
	if uid := c.Query("userId"); uid != "" {
		viewer = uid
	}

	profile, err := s.userService.GetProfile(c.UserContext(), username, viewer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// FollowUser makes the calling user follow :username.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	username := c.Params("username")
	caller := callerID(c)
	if caller == username {
		return respondError(c, models.NewValidationError("cannot follow yourself"))
	}

	edge, err := s.store.Follow(c.UserContext(), caller, username)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(edge)
}

// UnfollowUser removes the calling user's follow edge toward :username.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	username := c.Params("username")

	removed, err := s.store.Unfollow(c.UserContext(), callerID(c), username)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if !removed {
		return respondError(c, models.NewNotFoundError("follow", username))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers lists the profiles following :username.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	profiles, err := s.store.ListFollowers(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(profiles)
}

// GetFollowing lists the profiles :username follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	profiles, err := s.store.ListFollowing(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(profiles)
}

// GetFollowStatus reports whether the calling user follows :username.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	isFollowing, err := s.store.IsFollowing(c.UserContext(), callerID(c), c.Params("username"))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"isFollowing": isFollowing})
}
