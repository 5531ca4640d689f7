package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetBySlug(ctx context.Context, tagSlug string) (*models.Tag, error)
	FirstOrCreateByName(ctx context.Context, name string) (*models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("slug = ?", tagSlug).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", tagSlug)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// tagCreateAttempts bounds the create loop when distinct names keep
// slugifying onto taken slugs.
const tagCreateAttempts = 5

// FirstOrCreateByName finds the tag by name or creates it, deriving the tag
// slug from the name. A duplicated key on insert means either a concurrent
// create of the same name won the race, or a different name already owns the
// slug ("C++" and "C--" both slugify to "c"): the name re-read resolves the
// former, a suffixed slug the latter.
func (r *tagRepository) FirstOrCreateByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	base := slug.Make(name)
	candidate := base
	for suffix := 2; suffix < 2+tagCreateAttempts; suffix++ {
		tag = models.Tag{Name: name, Slug: candidate}
		createErr := r.db.WithContext(ctx).Create(&tag).Error
		if createErr == nil {
			cache.InvalidateTags(ctx)
			return &tag, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return nil, models.NewInternalError(createErr)
		}

		var existing models.Tag
		readErr := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
		if readErr == nil {
			return &existing, nil
		}
		if !errors.Is(readErr, gorm.ErrRecordNotFound) {
			return nil, models.NewInternalError(readErr)
		}
		candidate = slug.WithSuffix(base, suffix)
	}

	return nil, models.NewConflictError("Could not allocate a unique tag slug", nil)
}
