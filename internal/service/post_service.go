// Package service contains the application's business logic layer.
package service

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/slug"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen    = 200
	maxContentLen  = 50000
	maxTagsPerPost = 10

	// PageSize is the fixed page size of the public listing and the dashboard.
	PageSize = 5

	// RecentPostsLimit is the default size of the sidebar listing of newest
	// posts; maxRecentPostsLimit caps caller-supplied limits.
	RecentPostsLimit    = 5
	maxRecentPostsLimit = 20

	// slugCreateAttempts bounds the probe-and-insert loop. Each retry re-probes
	// the index, so exhausting this means the index is churning pathologically.
	slugCreateAttempts = 5
)

// reservedSlugs are path segments under /api/posts that a post slug must
// never shadow.
var reservedSlugs = map[string]struct{}{
	"recent": {},
}

type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
	Status   string
	Tags     []string
}

type ListPostsInput struct {
	Page          int
	Query         string
	TagSlug       string
	CurrentUserID uint
}

type UpdatePostInput struct {
	UserID   uint
	Slug     string
	Title    string
	Content  string
	ImageURL string
	Status   string
	Tags     *[]string
}

// PostPage is one page of a post listing plus its page math.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		tagRepo:  tagRepo,
	}
}

// CreatePost validates the input, derives a unique slug from the title, and
// stores the post. The slug is chosen by probing the index and confirmed by
// the insert itself: if a concurrent create takes the candidate between probe
// and insert, the unique-violation conflict triggers another probe round.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()

	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		return nil, models.NewValidationError("Status must be draft or published")
	}

	base := slug.Make(in.Title)
	if base == "" {
		return nil, models.NewValidationError("Title must contain letters or digits")
	}

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	candidate := base
	suffix := 2
	for attempt := 0; attempt < slugCreateAttempts; attempt++ {
		for {
			if _, reserved := reservedSlugs[candidate]; !reserved {
				taken, err := s.postRepo.SlugExists(ctx, candidate)
				if err != nil {
					return nil, err
				}
				if !taken {
					break
				}
				observability.SlugCollisions.Inc()
			}
			candidate = slug.WithSuffix(base, suffix)
			suffix++
		}

		post := &models.Post{
			Title:    in.Title,
			Slug:     candidate,
			Content:  in.Content,
			ImageURL: in.ImageURL,
			Status:   status,
			UserID:   in.UserID,
			Tags:     tags,
		}
		err := s.postRepo.Create(ctx, post)
		if err == nil {
			observability.PostsCreated.WithLabelValues(status).Inc()
			span.AddAttributes(attribute.String("post.slug", post.Slug))
			return s.postRepo.GetBySlug(ctx, post.Slug, in.UserID)
		}
		if !models.HasCode(err, models.CodeConflict) {
			return nil, err
		}
		// Lost the race for this candidate; probe again from the next suffix.
		candidate = slug.WithSuffix(base, suffix)
		suffix++
	}

	err = models.NewConflictError("Could not allocate a unique slug", nil)
	span.SetError(err)
	return nil, err
}

// GetPost returns the post if the viewer may see it. Drafts are visible only
// to their author.
func (s *PostService) GetPost(ctx context.Context, postSlug string, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, currentUserID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(currentUserID) {
		return nil, models.NewForbiddenError("This post is not published")
	}
	return post, nil
}

// ListPosts returns one fixed-size page of published posts, newest first,
// optionally filtered by a search query and a tag slug. Filtering by a slug
// no tag owns is NOT_FOUND, not an empty page.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}

	if in.TagSlug != "" {
		if _, err := s.tagRepo.GetBySlug(ctx, in.TagSlug); err != nil {
			return nil, err
		}
	}

	opts := repository.ListOptions{
		Query:         in.Query,
		TagSlug:       in.TagSlug,
		Limit:         PageSize,
		Offset:        (page - 1) * PageSize,
		CurrentUserID: in.CurrentUserID,
	}

	total, err := s.postRepo.Count(ctx, opts)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: totalPages(total, PageSize),
	}, nil
}

// RecentPosts returns the newest published posts. The default limit is
// served cache-aside; non-default limits bypass the cache since its key holds
// exactly one listing shape.
func (s *PostService) RecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit < 1 || limit > maxRecentPostsLimit {
		limit = RecentPostsLimit
	}
	if limit != RecentPostsLimit {
		return s.postRepo.Recent(ctx, limit)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.RecentPostsKey, &posts, cache.RecentPostsTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.Recent(ctx, RecentPostsLimit)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Dashboard returns one page of the author's own posts, drafts included,
// with like and comment counts.
func (s *PostService) Dashboard(ctx context.Context, userID uint, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.postRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByUserID(ctx, userID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return &PostPage{
		Posts:      posts,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: totalPages(total, PageSize),
	}, nil
}

// UpdatePost lets the author change title, content, image, status, and tags.
// The slug is never recomputed, even when the title changes.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = in.Content
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if in.Status != "" {
		if !models.ValidStatus(in.Status) {
			return nil, models.NewValidationError("Status must be draft or published")
		}
		post.Status = in.Status
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if in.Tags != nil {
		tags, err := s.resolveTags(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetBySlug(ctx, post.Slug, in.UserID)
}

// DeletePost removes the author's post along with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, userID uint, postSlug string) error {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post)
}

// ToggleLike adds the user's like if absent and removes it if present, then
// returns the post with refreshed counts. The likes table's unique index is
// the point of truth: a concurrent duplicate insert lands on ON CONFLICT DO
// NOTHING instead of erroring.
func (s *PostService) ToggleLike(ctx context.Context, userID uint, postSlug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, userID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, post.ID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, post.ID, post.Slug); err != nil {
			return nil, err
		}
		observability.LikeToggles.WithLabelValues("unlike").Inc()
	} else {
		if err := s.postRepo.Like(ctx, userID, post.ID, post.Slug); err != nil {
			return nil, err
		}
		observability.LikeToggles.WithLabelValues("like").Inc()
	}

	return s.postRepo.GetBySlug(ctx, post.Slug, userID)
}

// resolveTags maps tag names to persistent tags, creating missing ones.
// Names are trimmed; blanks and duplicates are dropped.
func (s *PostService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) > maxTagsPerPost {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}

	seen := make(map[string]struct{}, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag, err := s.tagRepo.FirstOrCreateByName(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func validatePostFields(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
