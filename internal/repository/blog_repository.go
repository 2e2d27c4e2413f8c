package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/dantour/internal/model"
)

// BlogRepo is the gorm implementation of blog storage: categories, posts
// with their ordered sections, and likes.
type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo { return &BlogRepo{db: db} }

// ---- categories ----

func (r *BlogRepo) ListCategories(ctx context.Context) ([]model.BlogCategory, error) {
	out := []model.BlogCategory{}
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *BlogRepo) CreateCategory(ctx context.Context, c *model.BlogCategory) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return mapWriteErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *BlogRepo) UpdateCategory(ctx context.Context, c model.BlogCategory) error {
	res := r.db.WithContext(ctx).Model(&model.BlogCategory{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{"name": c.Name, "description": c.Description})
	return rowsOrNotFound(res.RowsAffected, mapWriteErr(res.Error))
}

func (r *BlogRepo) DeleteCategory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BlogCategory{})
	return rowsOrNotFound(res.RowsAffected, res.Error)
}

// ---- posts ----

func orderedSections(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }

// ListPosts returns posts newest first.  publishedOnly restricts the list
// to approved and published posts.
func (r *BlogRepo) ListPosts(ctx context.Context, publishedOnly bool) ([]model.BlogPost, error) {
	q := r.db.WithContext(ctx).Preload("Sections", orderedSections).Order("created_at DESC")
	if publishedOnly {
		q = q.Where("is_published = ? AND is_approved = ?", true, true)
	}
	out := []model.BlogPost{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, r.fillLikes(ctx, out)
}

func (r *BlogRepo) GetPost(ctx context.Context, id string) (model.BlogPost, error) {
	return r.getPost(ctx, "id = ?", id)
}

func (r *BlogRepo) GetPostBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	return r.getPost(ctx, "slug = ?", slug)
}

func (r *BlogRepo) getPost(ctx context.Context, cond string, arg string) (model.BlogPost, error) {
	var p model.BlogPost
	err := r.db.WithContext(ctx).Preload("Sections", orderedSections).Where(cond, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	posts := []model.BlogPost{p}
	if err := r.fillLikes(ctx, posts); err != nil {
		return p, err
	}
	return posts[0], nil
}

// CreatePost inserts the post and its sections in one transaction.  A
// taken slug returns ErrDuplicate.
func (r *BlogRepo) CreatePost(ctx context.Context, p *model.BlogPost) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Sections {
		if p.Sections[i].ID == "" {
			p.Sections[i].ID = uuid.NewString()
		}
		p.Sections[i].PostID = p.ID
	}
	return mapWriteErr(r.db.WithContext(ctx).Create(p).Error)
}

// BlogPostPatch lists the editable post columns.  Nil fields are kept.
type BlogPostPatch struct {
	Title              *string
	Excerpt            *string
	ReadingTimeMinutes *int
	AuthorBio          *string
	CoverImage         *string
	IsPublished        *bool
	CategoryID         *string
	Sections           []model.BlogSection
	ReplaceSections    bool
}

// UpdatePost applies patch; when ReplaceSections is set the sections are
// replaced as a whole.
func (r *BlogRepo) UpdatePost(ctx context.Context, id string, patch BlogPostPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Excerpt != nil {
			updates["excerpt"] = *patch.Excerpt
		}
		if patch.ReadingTimeMinutes != nil {
			updates["reading_time_minutes"] = *patch.ReadingTimeMinutes
		}
		if patch.AuthorBio != nil {
			updates["author_bio"] = *patch.AuthorBio
		}
		if patch.CoverImage != nil {
			updates["cover_image"] = *patch.CoverImage
		}
		if patch.IsPublished != nil {
			updates["is_published"] = *patch.IsPublished
		}
		if patch.CategoryID != nil {
			updates["category_id"] = *patch.CategoryID
		}
		if len(updates) > 0 {
			res := tx.Model(&model.BlogPost{}).Where("id = ?", id).Updates(updates)
			if err := rowsOrNotFound(res.RowsAffected, mapWriteErr(res.Error)); err != nil {
				return err
			}
		}
		if !patch.ReplaceSections {
			return nil
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.BlogSection{}).Error; err != nil {
			return err
		}
		if len(patch.Sections) == 0 {
			return nil
		}
		for i := range patch.Sections {
			patch.Sections[i].ID = uuid.NewString()
			patch.Sections[i].PostID = id
		}
		return tx.Create(&patch.Sections).Error
	})
}

// SetApproval flips the admin approval flag of a post.
func (r *BlogRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	res := r.db.WithContext(ctx).Model(&model.BlogPost{}).Where("id = ?", id).Update("is_approved", approved)
	return rowsOrNotFound(res.RowsAffected, res.Error)
}

func (r *BlogRepo) DeletePost(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BlogPost{})
	return rowsOrNotFound(res.RowsAffected, res.Error)
}

// ---- likes ----

// Like records a like; liking twice is a no-op.
func (r *BlogRepo) Like(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).Create(&model.BlogPostLike{ID: uuid.NewString(), UserID: userID, PostID: postID}).Error
	switch {
	case err == nil, isDuplicate(err):
		return nil
	case isForeignKey(err):
		return ErrNotFound
	default:
		return err
	}
}

func (r *BlogRepo) Unlike(ctx context.Context, userID, postID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.BlogPostLike{})
	return rowsOrNotFound(res.RowsAffected, res.Error)
}

func (r *BlogRepo) fillLikes(ctx context.Context, posts []model.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	var counts []struct {
		PostID string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&model.BlogPostLike{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).Group("post_id").Scan(&counts).Error
	if err != nil {
		return err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.PostID] = c.N
	}
	for i := range posts {
		posts[i].Likes = byID[posts[i].ID]
	}
	return nil
}
