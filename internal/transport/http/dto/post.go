package dto

import (
	"time"

	"elite_blog/internal/domain/models"
)

type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required"`
	Date       string   `json:"date" validate:"required" example:"2024-06-15"`
	CategoryID int64    `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	ImageKeys  []string `json:"image_keys" validate:"required,min=1,dive,required"`
}

// UpdatePostRequest is a partial update: omitted fields are left untouched.
// category_id 0 clears the category; image_keys replaces the image list.
type UpdatePostRequest struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content    *string   `json:"content,omitempty"`
	Date       *string   `json:"date,omitempty" example:"2024-06-15"`
	CategoryID *int64    `json:"category_id,omitempty" validate:"omitempty,gte=0"`
	ImageKeys  *[]string `json:"image_keys,omitempty" validate:"omitempty,min=1,dive,required"`
}

type PostListQuery struct {
	Category   string `query:"category"`
	CategoryID int64  `query:"category_id"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PostResponse struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	ContentHTML      string       `json:"content_html,omitempty"`
	Date             string       `json:"date" example:"2024-06-15"`
	Category         *CategoryRef `json:"category,omitempty"`
	ImageURL         string       `json:"image_url"`
	AdditionalImages []string     `json:"additional_images"`
	ImageKeys        []string     `json:"image_keys,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func NewPostResponse(p models.Post) PostResponse {
	resp := PostResponse{
		ID:               p.ID,
		Title:            p.Title,
		Content:          p.Content,
		Date:             p.Date.Format(models.DateLayout),
		ImageURL:         p.ImageURL,
		AdditionalImages: p.AdditionalImages,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if resp.AdditionalImages == nil {
		resp.AdditionalImages = []string{}
	}
	if p.Category != nil {
		resp.Category = &CategoryRef{ID: p.Category.ID, Name: p.Category.Name}
	}

	return resp
}

type EventsResponse struct {
	Upcoming []PostResponse `json:"upcoming"`
	Past     []PostResponse `json:"past"`
}
