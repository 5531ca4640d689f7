package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getBySlugFn     func(context.Context, string, uint) (*models.Post, error)
	listFn          func(context.Context, repository.ListOptions) ([]*models.Post, error)
	countFn         func(context.Context, repository.ListOptions) (int64, error)
	recentFn        func(context.Context, int) ([]*models.Post, error)
	getByUserIDFn   func(context.Context, uint, int, int) ([]*models.Post, error)
	countByUserIDFn func(context.Context, uint) (int64, error)
	slugExistsFn    func(context.Context, string) (bool, error)
	updateFn        func(context.Context, *models.Post) error
	replaceTagsFn   func(context.Context, *models.Post, []models.Tag) error
	deleteFn        func(context.Context, *models.Post) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	likeFn          func(context.Context, uint, uint, string) error
	unlikeFn        func(context.Context, uint, uint, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, opts repository.ListOptions) ([]*models.Post, error) {
	return s.listFn(ctx, opts)
}
func (s *postRepoStub) Count(ctx context.Context, opts repository.ListOptions) (int64, error) {
	return s.countFn(ctx, opts)
}
func (s *postRepoStub) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.recentFn(ctx, limit)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserIDFn(ctx, userID)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return s.replaceTagsFn(ctx, post, tags)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint, slug string) error {
	return s.likeFn(ctx, userID, postID, slug)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint, slug string) error {
	return s.unlikeFn(ctx, userID, postID, slug)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getBySlugFn: func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{Slug: slug, Status: models.StatusPublished}, nil
		},
		listFn:          func(_ context.Context, _ repository.ListOptions) ([]*models.Post, error) { return nil, nil },
		countFn:         func(_ context.Context, _ repository.ListOptions) (int64, error) { return 0, nil },
		recentFn:        func(_ context.Context, _ int) ([]*models.Post, error) { return nil, nil },
		getByUserIDFn:   func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByUserIDFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		slugExistsFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		replaceTagsFn:   func(_ context.Context, _ *models.Post, _ []models.Tag) error { return nil },
		deleteFn:        func(_ context.Context, _ *models.Post) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:          func(_ context.Context, _, _ uint, _ string) error { return nil },
		unlikeFn:        func(_ context.Context, _, _ uint, _ string) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	listFn              func(context.Context) ([]models.Tag, error)
	getBySlugFn         func(context.Context, string) (*models.Tag, error)
	firstOrCreateByName func(context.Context, string) (*models.Tag, error)
}

func (s *tagRepoStub) List(ctx context.Context) ([]models.Tag, error) {
	return s.listFn(ctx)
}
func (s *tagRepoStub) GetBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	return s.getBySlugFn(ctx, tagSlug)
}
func (s *tagRepoStub) FirstOrCreateByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.firstOrCreateByName(ctx, name)
}

func noopTagRepo() *tagRepoStub {
	nextID := uint(0)
	return &tagRepoStub{
		listFn:      func(_ context.Context) ([]models.Tag, error) { return nil, nil },
		getBySlugFn: func(_ context.Context, _ string) (*models.Tag, error) { return &models.Tag{}, nil },
		firstOrCreateByName: func(_ context.Context, name string) (*models.Tag, error) {
			nextID++
			return &models.Tag{ID: nextID, Name: name}, nil
		},
	}
}

// assertErrorCode asserts that err is an AppError carrying the given code.
func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopTagRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{
			name:  "empty title",
			input: CreatePostInput{UserID: 1, Content: "some content"},
		},
		{
			name:  "title too long",
			input: CreatePostInput{UserID: 1, Title: strings.Repeat("a", 201), Content: "some content"},
		},
		{
			name:  "empty content",
			input: CreatePostInput{UserID: 1, Title: "A Title"},
		},
		{
			name:  "content too long",
			input: CreatePostInput{UserID: 1, Title: "A Title", Content: strings.Repeat("a", 50001)},
		},
		{
			name:  "invalid status",
			input: CreatePostInput{UserID: 1, Title: "A Title", Content: "content", Status: "archived"},
		},
		{
			name:  "title with no usable characters",
			input: CreatePostInput{UserID: 1, Title: "!!!", Content: "content"},
		},
		{
			name: "too many tags",
			input: CreatePostInput{UserID: 1, Title: "A Title", Content: "content",
				Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tt.input)
			assertErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_CreatePost_SlugFromTitle(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  7,
		Title:   "My First Post!",
		Content: "Hello",
		Status:  models.StatusPublished,
	})
	require.NoError(t, err)
	assert.Equal(t, "my-first-post", post.Slug)
	assert.Equal(t, models.StatusPublished, post.Status)
	assert.Equal(t, uint(7), post.UserID)
}

func TestPostService_CreatePost_DefaultsToDraft(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, _ string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
}

func TestPostService_CreatePost_SuffixesTakenSlug(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"my-post": true, "my-post-2": true}
	repo := noopPostRepo()
	repo.slugExistsFn = func(_ context.Context, slug string) (bool, error) {
		return taken[slug], nil
	}
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, _ string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "My Post", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "my-post-3", post.Slug)
}

func TestPostService_CreatePost_SkipsReservedSlug(t *testing.T) {
	t.Parallel()

	// "recent" is a routing segment under /api/posts and must never become
	// a post slug.
	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, _ string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Recent", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "recent-2", post.Slug)
}

func TestPostService_CreatePost_RetriesOnInsertConflict(t *testing.T) {
	t.Parallel()

	// The probe says the slug is free, but a concurrent create wins the insert
	// race once. The service must retry with the next suffix.
	repo := noopPostRepo()
	conflicts := 1
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		if conflicts > 0 {
			conflicts--
			return models.NewConflictError("Slug already taken", nil)
		}
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, _ string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Race", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "race-2", post.Slug)
}

func TestPostService_CreatePost_GivesUpAfterRepeatedConflicts(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, _ *models.Post) error {
		return models.NewConflictError("Slug already taken", nil)
	}

	svc := NewPostService(repo, noopTagRepo())
	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Race", Content: "C"})
	assertErrorCode(t, err, models.CodeConflict)
}

func TestPostService_CreatePost_ResolvesTags(t *testing.T) {
	t.Parallel()

	var resolved []string
	tagRepo := noopTagRepo()
	base := tagRepo.firstOrCreateByName
	tagRepo.firstOrCreateByName = func(ctx context.Context, name string) (*models.Tag, error) {
		resolved = append(resolved, name)
		return base(ctx, name)
	}

	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	repo.getBySlugFn = func(_ context.Context, _ string, _ uint) (*models.Post, error) {
		return created, nil
	}

	svc := NewPostService(repo, tagRepo)
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: 1, Title: "Tagged", Content: "C",
		Tags: []string{" Go ", "Web", "Go", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Web"}, resolved, "names are trimmed, blanks and duplicates dropped")
	assert.Len(t, post.Tags, 2)
}

func TestPostService_GetPost_Visibility(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{Slug: slug, Status: models.StatusDraft, UserID: 5}, nil
	}
	svc := NewPostService(repo, noopTagRepo())
	ctx := context.Background()

	t.Run("author sees own draft", func(t *testing.T) {
		post, err := svc.GetPost(ctx, "secret", 5)
		require.NoError(t, err)
		assert.Equal(t, "secret", post.Slug)
	})

	t.Run("other user gets forbidden", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "secret", 9)
		assertErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("anonymous gets forbidden", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "secret", 0)
		assertErrorCode(t, err, models.CodeForbidden)
	})
}

func TestPostService_ListPosts_PageMath(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var gotOpts repository.ListOptions
	repo.countFn = func(_ context.Context, _ repository.ListOptions) (int64, error) { return 12, nil }
	repo.listFn = func(_ context.Context, opts repository.ListOptions) ([]*models.Post, error) {
		gotOpts = opts
		return []*models.Post{{}, {}}, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	page, err := svc.ListPosts(context.Background(), ListPostsInput{Page: 3, Query: "go", TagSlug: "web", CurrentUserID: 4})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Page)
	assert.Equal(t, PageSize, page.PageSize)
	assert.EqualValues(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	assert.Equal(t, "go", gotOpts.Query)
	assert.Equal(t, "web", gotOpts.TagSlug)
	assert.Equal(t, PageSize, gotOpts.Limit)
	assert.Equal(t, 2*PageSize, gotOpts.Offset)
	assert.Equal(t, uint(4), gotOpts.CurrentUserID)
}

func TestPostService_ListPosts_UnknownTag(t *testing.T) {
	t.Parallel()

	tagRepo := noopTagRepo()
	tagRepo.getBySlugFn = func(_ context.Context, tagSlug string) (*models.Tag, error) {
		return nil, models.NewNotFoundError("Tag", tagSlug)
	}
	listed := false
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, _ repository.ListOptions) ([]*models.Post, error) {
		listed = true
		return nil, nil
	}

	svc := NewPostService(repo, tagRepo)
	_, err := svc.ListPosts(context.Background(), ListPostsInput{TagSlug: "no-such-tag"})
	assertErrorCode(t, err, models.CodeNotFound)
	assert.False(t, listed, "unknown tag must not fall through to an empty page")
}

func TestPostService_ListPosts_PageDefaultsToOne(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, opts repository.ListOptions) ([]*models.Post, error) {
		assert.Equal(t, 0, opts.Offset)
		return nil, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	page, err := svc.ListPosts(context.Background(), ListPostsInput{Page: -2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
}

func TestPostService_RecentPosts(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var gotLimit int
	repo.recentFn = func(_ context.Context, limit int) ([]*models.Post, error) {
		gotLimit = limit
		return []*models.Post{{ID: 1}}, nil
	}
	svc := NewPostService(repo, noopTagRepo())

	posts, err := svc.RecentPosts(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 3, gotLimit)

	// Out-of-range limits fall back to the default.
	_, err = svc.RecentPosts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, RecentPostsLimit, gotLimit)

	_, err = svc.RecentPosts(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, RecentPostsLimit, gotLimit)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	makeRepo := func() *postRepoStub {
		repo := noopPostRepo()
		repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug, Title: "Old", Content: "Old content", Status: models.StatusDraft, UserID: 5}, nil
		}
		return repo
	}
	ctx := context.Background()

	t.Run("non-author is forbidden", func(t *testing.T) {
		svc := NewPostService(makeRepo(), noopTagRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 9, Slug: "mine", Title: "New"})
		assertErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("slug survives title change", func(t *testing.T) {
		repo := makeRepo()
		var saved *models.Post
		repo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := NewPostService(repo, noopTagRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 5, Slug: "mine", Title: "Completely New Title"})
		require.NoError(t, err)
		assert.Equal(t, "mine", saved.Slug)
		assert.Equal(t, "Completely New Title", saved.Title)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc := NewPostService(makeRepo(), noopTagRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 5, Slug: "mine", Status: "hidden"})
		assertErrorCode(t, err, models.CodeValidation)
	})

	t.Run("tags replaced only when provided", func(t *testing.T) {
		repo := makeRepo()
		replaced := false
		repo.replaceTagsFn = func(_ context.Context, _ *models.Post, tags []models.Tag) error {
			replaced = true
			assert.Len(t, tags, 1)
			return nil
		}
		svc := NewPostService(repo, noopTagRepo())

		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 5, Slug: "mine", Title: "New"})
		require.NoError(t, err)
		assert.False(t, replaced)

		newTags := []string{"Go"}
		_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: 5, Slug: "mine", Tags: &newTags})
		require.NoError(t, err)
		assert.True(t, replaced)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{ID: 1, Slug: slug, UserID: 5, Status: models.StatusPublished}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ *models.Post) error {
		deleted = true
		return nil
	}
	svc := NewPostService(repo, noopTagRepo())
	ctx := context.Background()

	err := svc.DeletePost(ctx, 9, "mine")
	assertErrorCode(t, err, models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(ctx, 5, "mine"))
	assert.True(t, deleted)
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	makeRepo := func(initiallyLiked bool) (*postRepoStub, *string) {
		action := new(string)
		repo := noopPostRepo()
		repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 3, Slug: slug, UserID: 5, Status: models.StatusPublished}, nil
		}
		repo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) { return initiallyLiked, nil }
		repo.likeFn = func(_ context.Context, _, _ uint, _ string) error {
			*action = "like"
			return nil
		}
		repo.unlikeFn = func(_ context.Context, _, _ uint, _ string) error {
			*action = "unlike"
			return nil
		}
		return repo, action
	}

	t.Run("likes when not liked", func(t *testing.T) {
		repo, action := makeRepo(false)
		svc := NewPostService(repo, noopTagRepo())
		_, err := svc.ToggleLike(ctx, 8, "some-post")
		require.NoError(t, err)
		assert.Equal(t, "like", *action)
	})

	t.Run("unlikes when already liked", func(t *testing.T) {
		repo, action := makeRepo(true)
		svc := NewPostService(repo, noopTagRepo())
		_, err := svc.ToggleLike(ctx, 8, "some-post")
		require.NoError(t, err)
		assert.Equal(t, "unlike", *action)
	})

	t.Run("missing post surfaces not found", func(t *testing.T) {
		repo, _ := makeRepo(false)
		repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		svc := NewPostService(repo, noopTagRepo())
		_, err := svc.ToggleLike(ctx, 8, "gone")
		assertErrorCode(t, err, models.CodeNotFound)
	})
}

func TestPostService_Dashboard(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByUserIDFn = func(_ context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
		assert.Equal(t, uint(5), userID)
		assert.Equal(t, PageSize, limit)
		assert.Equal(t, PageSize, offset)
		return []*models.Post{
			{Slug: "draft-post", Status: models.StatusDraft},
			{Slug: "live-post", Status: models.StatusPublished},
		}, nil
	}
	repo.countByUserIDFn = func(_ context.Context, userID uint) (int64, error) {
		assert.Equal(t, uint(5), userID)
		return 7, nil
	}

	svc := NewPostService(repo, noopTagRepo())
	page, err := svc.Dashboard(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, models.StatusDraft, page.Posts[0].Status, "dashboard includes drafts")
	assert.EqualValues(t, 7, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}
