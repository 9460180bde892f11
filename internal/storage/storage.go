package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

var (
	ErrCategoryExists       = errors.New("category already exists")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrGalleryImageNotFound = errors.New("gallery image not found")
	ErrUploadNotFound       = errors.New("upload not found or already used")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
)
