package models

import "time"

// DateLayout is the wire and column format of a post's date.
const DateLayout = "2006-01-02"

// Post is a blog entry. The first image is the primary one, the rest are kept
// in order as additional images. Keys and URLs are stored side by side.
type Post struct {
	ID                  int64     `json:"id" db:"id"`
	Title               string    `json:"title" db:"title"`
	Content             string    `json:"content" db:"content"`
	Date                time.Time `json:"date" db:"date"`
	CategoryID          *int64    `json:"category_id,omitempty" db:"category_id"`
	Category            *Category `json:"category,omitempty"`
	ImageKey            string    `json:"image_key" db:"image_key"`
	ImageURL            string    `json:"image_url" db:"image_url"`
	AdditionalImageKeys []string  `json:"additional_image_keys" db:"additional_image_keys"`
	AdditionalImages    []string  `json:"additional_images" db:"additional_images"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// ImageKeys returns every storage key the post references, primary first.
func (p *Post) ImageKeys() []string {
	keys := make([]string, 0, len(p.AdditionalImageKeys)+1)
	if p.ImageKey != "" {
		keys = append(keys, p.ImageKey)
	}

	return append(keys, p.AdditionalImageKeys...)
}

// SetImages assigns files in order: the first one becomes the primary image.
func (p *Post) SetImages(files []StoredFile) {
	p.ImageKey, p.ImageURL = "", ""
	p.AdditionalImageKeys = make([]string, 0, len(files))
	p.AdditionalImages = make([]string, 0, len(files))

	for i, f := range files {
		if i == 0 {
			p.ImageKey, p.ImageURL = f.Key, f.URL
			continue
		}
		p.AdditionalImageKeys = append(p.AdditionalImageKeys, f.Key)
		p.AdditionalImages = append(p.AdditionalImages, f.URL)
	}
}

type PostOrder int

const (
	PostOrderDateDesc PostOrder = iota
	PostOrderDateAsc
	PostOrderCreatedDesc
)

// PostFilter narrows a post listing. Zero value lists everything by date, newest first.
type PostFilter struct {
	CategoryID int64
	DateFrom   *time.Time // inclusive
	DateBefore *time.Time // exclusive
	OrderBy    PostOrder
}

// PostUpdate carries the fields of a partial update. Nil means unchanged.
type PostUpdate struct {
	Title      *string
	Content    *string
	Date       *time.Time
	CategoryID *int64 // 0 clears the category
	Images     []StoredFile
}

func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Date == nil && u.CategoryID == nil && u.Images == nil
}

// Events splits posts around the current day.
type Events struct {
	Upcoming []Post `json:"upcoming"`
	Past     []Post `json:"past"`
}
