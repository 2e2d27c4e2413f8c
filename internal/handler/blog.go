package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/service"
)

// BlogStore is implemented by *repository.BlogRepo.
type BlogStore interface {
	ListCategories(ctx context.Context) ([]model.BlogCategory, error)
	CreateCategory(ctx context.Context, c *model.BlogCategory) error
	UpdateCategory(ctx context.Context, c model.BlogCategory) error
	DeleteCategory(ctx context.Context, id string) error

	ListPosts(ctx context.Context, publishedOnly bool) ([]model.BlogPost, error)
	GetPost(ctx context.Context, id string) (model.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (model.BlogPost, error)
	CreatePost(ctx context.Context, p *model.BlogPost) error
	UpdatePost(ctx context.Context, id string, patch repository.BlogPostPatch) error
	SetApproval(ctx context.Context, id string, approved bool) error
	DeletePost(ctx context.Context, id string) error

	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
}

// BlogHandler serves /api/v1/blog.  Hosts write posts, admins approve
// them and manage categories.
type BlogHandler struct {
	Blog BlogStore
}

func NewBlogHandler(s BlogStore) *BlogHandler { return &BlogHandler{Blog: s} }

type sectionReq struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	Videos    []string `json:"videos"`
	SortOrder *int     `json:"sort_order"`
}

type postReq struct {
	Title              *string       `json:"title"`
	Slug               *string       `json:"slug"`
	Excerpt            *string       `json:"excerpt"`
	ReadingTimeMinutes *int          `json:"reading_time_minutes"`
	AuthorBio          *string       `json:"author_bio"`
	CoverImage         *string       `json:"cover_image"`
	IsPublished        *bool         `json:"is_published"`
	CategoryID         *string       `json:"category_id"`
	Sections           *[]sectionReq `json:"sections"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lower-cases s and joins its alphanumeric runs with dashes.
func slugify(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

func (r postReq) sections() ([]model.BlogSection, error) {
	if r.Sections == nil {
		return nil, nil
	}
	out := make([]model.BlogSection, 0, len(*r.Sections))
	for i, s := range *r.Sections {
		if strings.TrimSpace(s.Content) == "" {
			return nil, &service.ValidationError{Field: "sections", Message: "every section needs content"}
		}
		order := i
		if s.SortOrder != nil {
			order = *s.SortOrder
		}
		out = append(out, model.BlogSection{
			Title:     strings.TrimSpace(s.Title),
			Content:   s.Content,
			Images:    model.StringList(s.Images).NonEmpty(),
			Videos:    model.StringList(s.Videos).NonEmpty(),
			SortOrder: order,
		})
	}
	return out, nil
}

// ---- categories ----

func (h *BlogHandler) ListCategories(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.BlogCategory, error) {
		return h.Blog.ListCategories(ctx)
	})
}

func (h *BlogHandler) CreateCategory(c echo.Context) error {
	req, err := bindNamed(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.BlogCategory, error) {
		bc := model.BlogCategory{Name: req.Name, Description: req.Description}
		err := h.Blog.CreateCategory(ctx, &bc)
		return bc, err
	})
}

func (h *BlogHandler) UpdateCategory(c echo.Context) error {
	req, err := bindNamed(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.BlogCategory, error) {
		bc := model.BlogCategory{ID: c.Param("id"), Name: req.Name, Description: req.Description}
		return bc, h.Blog.UpdateCategory(ctx, bc)
	})
}

func (h *BlogHandler) DeleteCategory(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Blog.DeleteCategory(ctx, c.Param("id")))
	})
}

// ---- posts ----

// ListPosts: GET /blog/posts, published and approved only.
func (h *BlogHandler) ListPosts(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.BlogPost, error) {
		return h.Blog.ListPosts(ctx, true)
	})
}

// ListAllPosts: GET /blog/admin/posts (admin), drafts included.
func (h *BlogHandler) ListAllPosts(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.BlogPost, error) {
		return h.Blog.ListPosts(ctx, false)
	})
}

// GetPost: GET /blog/posts/:id where :id is a UUID or a slug.
func (h *BlogHandler) GetPost(c echo.Context) error {
	key := strings.TrimSpace(c.Param("id"))
	return run(c, http.StatusOK, func(ctx context.Context) (model.BlogPost, error) {
		if _, err := uuid.Parse(key); err == nil {
			return h.Blog.GetPost(ctx, key)
		}
		return h.Blog.GetPostBySlug(ctx, key)
	})
}

func (h *BlogHandler) CreatePost(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req postReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return respondError(c, &service.ValidationError{Field: "title", Message: "is required"})
	}
	sections, err := req.sections()
	if err != nil {
		return respondError(c, err)
	}
	p := model.BlogPost{
		Title:              strings.TrimSpace(*req.Title),
		Excerpt:            req.Excerpt,
		ReadingTimeMinutes: 3,
		AuthorBio:          req.AuthorBio,
		CoverImage:         req.CoverImage,
		UserID:             uid,
		CategoryID:         req.CategoryID,
		Sections:           sections,
	}
	p.Slug = slugify(p.Title)
	if req.Slug != nil && slugify(*req.Slug) != "" {
		p.Slug = slugify(*req.Slug)
	}
	if p.Slug == "" {
		return respondError(c, &service.ValidationError{Field: "slug", Message: "cannot be derived from the title"})
	}
	if req.ReadingTimeMinutes != nil && *req.ReadingTimeMinutes > 0 {
		p.ReadingTimeMinutes = *req.ReadingTimeMinutes
	}
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.BlogPost, error) {
		err := h.Blog.CreatePost(ctx, &p)
		return p, err
	})
}

// ownPost loads the post and checks the caller wrote it.  Admins pass.
func (h *BlogHandler) ownPost(ctx context.Context, c echo.Context) (model.BlogPost, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.BlogPost{}, err
	}
	p, err := h.Blog.GetPost(ctx, c.Param("id"))
	if err != nil {
		return p, err
	}
	if p.UserID != uid && !isAdmin(c) {
		return p, &service.ForbiddenError{Message: "not your post"}
	}
	return p, nil
}

// UpdatePost: PUT /blog/posts/:id by its author.  Sending sections
// replaces them all.
func (h *BlogHandler) UpdatePost(c echo.Context) error {
	var req postReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sections, err := req.sections()
	if err != nil {
		return respondError(c, err)
	}
	patch := repository.BlogPostPatch{
		Title:              req.Title,
		Excerpt:            req.Excerpt,
		ReadingTimeMinutes: req.ReadingTimeMinutes,
		AuthorBio:          req.AuthorBio,
		CoverImage:         req.CoverImage,
		IsPublished:        req.IsPublished,
		CategoryID:         req.CategoryID,
		Sections:           sections,
		ReplaceSections:    req.Sections != nil,
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return respondError(c, &service.ValidationError{Field: "title", Message: "cannot be blank"})
		}
		patch.Title = &t
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.BlogPost, error) {
		p, err := h.ownPost(ctx, c)
		if err != nil {
			return p, err
		}
		if err := h.Blog.UpdatePost(ctx, p.ID, patch); err != nil {
			return p, err
		}
		return h.Blog.GetPost(ctx, p.ID)
	})
}

func (h *BlogHandler) DeletePost(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		p, err := h.ownPost(ctx, c)
		if err != nil {
			return none{}, err
		}
		return discard(h.Blog.DeletePost(ctx, p.ID))
	})
}

// ApprovePost: PATCH /blog/posts/:id/approval (admin).
func (h *BlogHandler) ApprovePost(c echo.Context) error {
	var req approvalReq
	if err := c.Bind(&req); err != nil || req.IsApproved == nil {
		return respondError(c, &service.ValidationError{Field: "is_approved", Message: "is required"})
	}
	return run(c, http.StatusOK, func(ctx context.Context) (echo.Map, error) {
		return echo.Map{"id": c.Param("id"), "is_approved": *req.IsApproved},
			h.Blog.SetApproval(ctx, c.Param("id"), *req.IsApproved)
	})
}

// ---- likes ----

func (h *BlogHandler) Like(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Blog.Like(ctx, uid, c.Param("id")))
	})
}

func (h *BlogHandler) Unlike(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Blog.Unlike(ctx, uid, c.Param("id")))
	})
}
