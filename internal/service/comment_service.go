package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID   uint
	PostSlug string
	Body     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a comment to a post the commenter can see. Comments are
// final once created; there is no edit path.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.PostSlug, in.UserID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(in.UserID) {
		return nil, models.NewForbiddenError("This post is not published")
	}

	if in.Body == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		Body:   in.Body,
		UserID: in.UserID,
		PostID: post.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()

	return comment, nil
}

// ListComments returns a post's comments, newest first, subject to the same
// visibility rule as the post itself.
func (s *CommentService) ListComments(ctx context.Context, postSlug string, currentUserID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, currentUserID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(currentUserID) {
		return nil, models.NewForbiddenError("This post is not published")
	}
	return s.commentRepo.ListByPost(ctx, post.ID)
}
