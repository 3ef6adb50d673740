package server

import (
	"io"
	"mime/multipart"
	"strconv"

	"rewear/internal/models"
	"rewear/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateItem handles POST /api/items (multipart: fields + images)
func (s *Server) CreateItem(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	pointValue, _ := strconv.Atoi(c.FormValue("pointValue", "0"))
	files, err := readUploadFiles(form.File["images"])
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	item, err := s.itemService.CreateItem(ctx, service.CreateItemInput{
		OwnerID:     userID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Size:        c.FormValue("size"),
		Condition:   c.FormValue("condition"),
		Brand:       c.FormValue("brand"),
		Color:       c.FormValue("color"),
		TagsJSON:    c.FormValue("tags"),
		PointValue:  pointValue,
		Files:       files,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// GetItems handles GET /api/items
func (s *Server) GetItems(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)
	userID, _ := s.optionalUserID(c)

	filter := models.ItemFilter{
		Category:   c.Query("category"),
		Size:       c.Query("size"),
		Status:     c.Query("status"),
		SearchTerm: c.Query("searchTerm"),
		IncludeAll: c.QueryBool("includeAll"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	items, err := s.itemService.ListItems(ctx, filter, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// GetItem handles GET /api/items/:id
func (s *Server) GetItem(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	item, err := s.itemService.GetItem(ctx, id, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// GetUserItems handles GET /api/items/user/:userId?
// Without a userId parameter it lists the caller's own items.
func (s *Server) GetUserItems(c *fiber.Ctx) error {
	ctx := c.Context()
	currentUserID := c.Locals("userID").(uint)

	targetID := currentUserID
	if c.Params("userId") != "" {
		id, err := s.parseID(c, "userId")
		if err != nil {
			return nil
		}
		targetID = id
	}

	items, err := s.itemService.GetUserItems(ctx, targetID, currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// UpdateItem handles PUT /api/items/:id (multipart)
// Only form keys present in the request are applied, so clearing an optional
// field is distinct from omitting it.
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	in := service.UpdateItemInput{
		UserID:      userID,
		ItemID:      itemID,
		Title:       formField(form, "title"),
		Description: formField(form, "description"),
		Category:    formField(form, "category"),
		Size:        formField(form, "size"),
		Condition:   formField(form, "condition"),
		Brand:       formField(form, "brand"),
		Color:       formField(form, "color"),
		TagsJSON:    formField(form, "tags"),
		Status:      formField(form, "status"),
	}
	if raw := formField(form, "pointValue"); raw != nil {
		pointValue, convErr := strconv.Atoi(*raw)
		if convErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Point value must be a number"))
		}
		in.PointValue = &pointValue
	}

	in.Files, err = readUploadFiles(form.File["images"])
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	item, err := s.itemService.UpdateItem(ctx, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// DeleteItem handles DELETE /api/items/:id
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.itemService.DeleteItem(ctx, service.DeleteItemInput{UserID: userID, ItemID: itemID}); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item deleted",
	})
}

// ToggleLike handles POST /api/items/:id/toggle-like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	isLiked, likes, err := s.itemService.ToggleLike(ctx, userID, itemID)
	if err != nil {
		return respondError(c, err)
	}

	message := "Item unliked"
	if isLiked {
		message = "Item liked"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"isLiked": isLiked,
		"likes":   likes,
	})
}

// formField returns a pointer to the first value for a multipart form key,
// or nil when the key was absent.
func formField(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// readUploadFiles buffers multipart file contents for the service layer.
func readUploadFiles(headers []*multipart.FileHeader) ([]service.UploadFile, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return files, nil
}
