package server

import (
	"rewear/internal/models"
	"rewear/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSwap handles POST /api/swaps
func (s *Server) CreateSwap(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		RequestedItemID uint   `json:"requested_item_id"`
		OfferedItemID   *uint  `json:"offered_item_id"`
		Type            string `json:"type"`
		Message         string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	swap, err := s.swapService.CreateSwap(ctx, service.CreateSwapInput{
		RequesterID:     userID,
		RequestedItemID: req.RequestedItemID,
		OfferedItemID:   req.OfferedItemID,
		Type:            req.Type,
		Message:         req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    swap,
	})
}

// GetSwaps handles GET /api/swaps
// Lists the caller's swaps, optionally narrowed by status.
func (s *Server) GetSwaps(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	swaps, err := s.swapService.ListSwaps(ctx, models.SwapFilter{
		Status: c.Query("status"),
		UserID: userID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(swaps),
		"data":    swaps,
	})
}

// GetSwap handles GET /api/swaps/:id
func (s *Server) GetSwap(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	swap, err := s.swapService.GetSwap(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    swap,
	})
}

// UpdateSwapStatus handles PUT /api/swaps/:id/status
func (s *Server) UpdateSwapStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	swapID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	swap, err := s.swapService.UpdateSwapStatus(ctx, service.UpdateSwapStatusInput{
		UserID: userID,
		SwapID: swapID,
		Status: req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    swap,
	})
}

// RateSwap handles POST /api/swaps/:id/rate
func (s *Server) RateSwap(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	swapID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	swap, err := s.swapService.RateSwap(ctx, service.RateSwapInput{
		UserID:  userID,
		SwapID:  swapID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    swap,
	})
}

// GetSwapHistory handles GET /api/swaps/history/:userId?
// Without a userId parameter it returns the caller's own history.
func (s *Server) GetSwapHistory(c *fiber.Ctx) error {
	ctx := c.Context()
	currentUserID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	targetID := currentUserID
	if c.Params("userId") != "" {
		id, err := s.parseID(c, "userId")
		if err != nil {
			return nil
		}
		targetID = id
	}

	history, err := s.swapService.GetUserSwapHistory(ctx, targetID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    history.Swaps,
		"stats":   history.Stats,
	})
}
