package models

import "time"

const DefaultPhotographer = "Equipe Elite"

type GalleryImage struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Photographer string    `json:"photographer" db:"photographer"`
	ImageKey     string    `json:"image_key" db:"image_key"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
