// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?page=&q=&tag=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	page, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Page:          parsePage(c),
		Query:         c.Query("q"),
		TagSlug:       c.Query("tag"),
		CurrentUserID: userID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}

// GetRecentPosts handles GET /api/posts/recent?limit=
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	posts, err := s.postService.RecentPosts(c.Context(), c.QueryInt("limit", service.RecentPostsLimit))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(ctx, c.Params("slug"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		ImageURL string   `json:"image_url,omitempty"`
		Status   string   `json:"status,omitempty"`
		Tags     []string `json:"tags,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Status:   req.Status,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title    string    `json:"title"`
		Content  string    `json:"content"`
		ImageURL string    `json:"image_url,omitempty"`
		Status   string    `json:"status,omitempty"`
		Tags     *[]string `json:"tags,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:   userID,
		Slug:     c.Params("slug"),
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Status:   req.Status,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.postService.DeletePost(ctx, userID, c.Params("slug")); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:slug/like
// This endpoint toggles the like status: if already liked, it unlikes; if
// not liked, it likes. The response carries the refreshed counts.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	post, err := s.postService.ToggleLike(ctx, userID, c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// GetDashboard handles GET /api/dashboard?page=
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	page, err := s.postService.Dashboard(ctx, userID, parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}
