// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demoPassword is the shared password for every seeded account.
const demoPassword = "InkwellDemo123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	rng   *rand.Rand
	slugs map[string]struct{}
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:    db,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		slugs: make(map[string]struct{}),
	}
}

// CreateUsers persists n users with faked identities and a shared demo
// password.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(8),
		}
		if err := f.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// CreateTags upserts the given tag names.
func (f *Factory) CreateTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name, Slug: slug.Make(name)}
		if err := f.db.Where("slug = ?", tag.Slug).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// CreatePosts persists n posts spread across the given users, roughly one in
// four left as a draft, each with up to three tags and a created_at spread
// over the last 90 days.
func (f *Factory) CreatePosts(users []*models.User, tags []models.Tag, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author posts")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[f.rng.Intn(len(users))]
		post := f.BuildPost(author)

		for _, tag := range pickTags(f.rng, tags, f.rng.Intn(4)) {
			post.Tags = append(post.Tags, tag)
		}

		if err := f.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(5)+3), ".")

	status := models.StatusPublished
	if f.rng.Intn(4) == 0 {
		status = models.StatusDraft
	}

	post := &models.Post{
		Title:   title,
		Slug:    uniqueSlug(title, f.slugs),
		Content: gofakeit.Paragraph(2, 4, 12, "\n\n"),
		Status:  status,
		UserID:  author.ID,
	}
	if f.rng.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID())
	}

	// realistic created_at spread
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	return post
}

// CreateComments adds zero to five comments per published post.
func (f *Factory) CreateComments(users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		if post.Status != models.StatusPublished {
			continue
		}
		for i := 0; i < f.rng.Intn(6); i++ {
			commenter := users[f.rng.Intn(len(users))]
			comment := &models.Comment{
				Body:   gofakeit.Sentence(f.rng.Intn(15) + 3),
				UserID: commenter.ID,
				PostID: post.ID,
			}
			comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour)
			if err := f.db.Create(comment).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// CreateLikes adds likes to published posts. Each (user, post) pair is liked
// at most once, matching the unique index on the likes table.
func (f *Factory) CreateLikes(users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		if post.Status != models.StatusPublished {
			continue
		}
		for _, idx := range f.rng.Perm(len(users))[:f.rng.Intn(len(users)+1)] {
			like := &models.Like{
				UserID: users[idx].ID,
				PostID: post.ID,
			}
			if err := f.db.Create(like).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func pickTags(rng *rand.Rand, tags []models.Tag, n int) []models.Tag {
	if n > len(tags) {
		n = len(tags)
	}
	picked := make([]models.Tag, 0, n)
	for _, idx := range rng.Perm(len(tags))[:n] {
		picked = append(picked, tags[idx])
	}
	return picked
}
