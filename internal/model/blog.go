package model

import "time"

// BlogCategory groups blog posts.
type BlogCategory struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

// BlogPost is an article written by a host.  Sections are preloaded and
// kept in SortOrder.
type BlogPost struct {
	ID                 string        `gorm:"primaryKey;type:char(36)" json:"id"`
	Title              string        `gorm:"size:255;not null" json:"title"`
	Slug               string        `gorm:"uniqueIndex;size:255" json:"slug"`
	Excerpt            *string       `gorm:"type:text" json:"excerpt,omitempty"`
	ReadingTimeMinutes int           `gorm:"default:3" json:"reading_time_minutes"`
	AuthorBio          *string       `gorm:"type:text" json:"author_bio,omitempty"`
	CoverImage         *string       `gorm:"type:text" json:"cover_image,omitempty"`
	IsApproved         bool          `json:"is_approved"`
	IsPublished        bool          `json:"is_published"`
	UserID             string        `gorm:"type:char(36);not null" json:"user_id"`
	CategoryID         *string       `gorm:"type:char(36)" json:"category_id,omitempty"`
	Sections           []BlogSection `gorm:"foreignKey:PostID" json:"sections"`
	Likes              int64         `gorm:"-" json:"likes"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// BlogSection is an ordered block of a post.
type BlogSection struct {
	ID        string     `gorm:"primaryKey;type:char(36)" json:"id"`
	PostID    string     `gorm:"type:char(36);not null" json:"post_id"`
	Title     string     `gorm:"size:255" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Images    StringList `gorm:"type:json" json:"images"`
	Videos    StringList `gorm:"type:json" json:"videos"`
	SortOrder int        `json:"sort_order"`
}

func (BlogSection) TableName() string { return "blog_sections" }

// BlogPostLike is unique per (user, post).
type BlogPostLike struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID    string    `gorm:"type:char(36);not null" json:"user_id"`
	PostID    string    `gorm:"type:char(36);not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlogPostLike) TableName() string { return "blog_post_likes" }
