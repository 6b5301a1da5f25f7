package topic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/belajarku/backend/core"
)

// Topic groups related learning materials.
type Topic struct {
	ID          string    `db:"topic_id" json:"id"`
	Name        string    `db:"nama" json:"name"`
	Description string    `db:"deskripsi" json:"description"`
	Image       string    `db:"gambar" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"` // UTC

	Materials []Material `db:"-" json:"materials,omitempty"`
}

// Material is one unit of paged learning content within a Topic.
type Material struct {
	ID        string    `db:"material_id" json:"id"`
	TopicID   string    `db:"topic_id" json:"topic_id"`
	Title     string    `db:"judul" json:"title"`
	Content   string    `db:"konten" json:"content"`
	PageCount int       `db:"page_count" json:"page_count"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// NewTopic contains information needed to create a new Topic.
type NewTopic struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	nt.Image = core.CleanString(nt.Image)
	return validate.Struct(nt)
}

// UpdateTopic defines what information may be provided to modify an existing Topic.
type UpdateTopic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (ut *UpdateTopic) Validate(origTopic Topic, validate *validator.Validate) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = origTopic.Name
	}
	ut.Description = core.CleanString(ut.Description)
	ut.Image = core.CleanString(ut.Image)
	return validate.Struct(ut)
}

// NewMaterial contains information needed to create a new Material.
type NewMaterial struct {
	TopicID   string `json:"topic_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	PageCount int    `json:"page_count" validate:"required,min=1"`
	Position  int    `json:"position" validate:"min=0"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

// UpdateMaterial defines what information may be provided to modify an existing Material.
type UpdateMaterial struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	PageCount int    `json:"page_count" validate:"omitempty,min=1"`
	Position  *int   `json:"position" validate:"omitempty,min=0"`
}

func (um *UpdateMaterial) Validate(origMat Material, validate *validator.Validate) error {
	if title := core.CleanString(um.Title); title != "" {
		um.Title = title
	} else {
		um.Title = origMat.Title
	}
	if um.Content == "" {
		um.Content = origMat.Content
	}
	if um.PageCount == 0 {
		um.PageCount = origMat.PageCount
	}
	return validate.Struct(um)
}

// QueryFilter narrows down a topic search.
type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
