package dto

import (
	"time"

	"elite_blog/internal/domain/models"
)

type CreateGalleryRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Photographer string   `json:"photographer,omitempty" validate:"omitempty,max=200"`
	ImageKeys    []string `json:"image_keys" validate:"required,min=1,dive,required"`
}

type GalleryImageResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Photographer string    `json:"photographer"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewGalleryImageResponse(img models.GalleryImage) GalleryImageResponse {
	return GalleryImageResponse{
		ID:           img.ID,
		Title:        img.Title,
		Photographer: img.Photographer,
		ImageURL:     img.ImageURL,
		CreatedAt:    img.CreatedAt,
	}
}

func NewGalleryImageResponses(images []models.GalleryImage) []GalleryImageResponse {
	out := make([]GalleryImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, NewGalleryImageResponse(img))
	}

	return out
}
