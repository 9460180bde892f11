package dto

import (
	"mime/multipart"

	"elite_blog/internal/domain/models"
)

type UploadInput struct {
	Collection models.Collection
	Files      []*multipart.FileHeader
}

type UploadResponse struct {
	Files []models.StoredFile `json:"files"`
}

type UploadFailureResponse struct {
	Status     string              `json:"status"`
	Error      string              `json:"error"`
	Details    string              `json:"details,omitempty"`
	FailedFile string              `json:"failed_file"`
	Uploaded   []models.StoredFile `json:"uploaded"`
}

type SweepRequest struct {
	DryRun bool `json:"dry_run" query:"dry_run"`
}
