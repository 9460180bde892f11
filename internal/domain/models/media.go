package models

import (
	"fmt"
	"strings"
	"time"
)

// Collection is the top-level folder of the object store a file belongs to.
type Collection string

const (
	CollectionBlog    Collection = "blog"
	CollectionGallery Collection = "gallery"
)

func (c Collection) Valid() bool {
	return c == CollectionBlog || c == CollectionGallery
}

func (c Collection) Prefix() string {
	return string(c) + "/"
}

var Collections = []Collection{CollectionBlog, CollectionGallery}

// StoredFile is an uploaded object: its key in the bucket and its public URL.
type StoredFile struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PendingUpload is a file uploaded but not yet referenced by any record.
type PendingUpload struct {
	Key         string     `db:"key" json:"key"`
	Collection  Collection `db:"collection" json:"collection"`
	URL         string     `db:"url" json:"url"`
	Size        int64      `db:"size" json:"size"`
	ContentType string     `db:"content_type" json:"content_type"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

func (p PendingUpload) File() StoredFile {
	return StoredFile{Key: p.Key, URL: p.URL}
}

// StoredObject is an entry of an object store listing.
type StoredObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// SweepReport summarises one reconciliation run.
type SweepReport struct {
	DryRun       bool           `json:"dry_run"`
	Scanned      int            `json:"scanned"`
	Orphans      []StoredObject `json:"orphans"`
	Deleted      []string       `json:"deleted"`
	Failed       []string       `json:"failed,omitempty"`
	StalePending int            `json:"stale_pending"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// ValidationError collects input problems found before touching any store.
type ValidationError struct {
	Errors []string
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// PartialDeleteError reports a record that was deleted while some of its
// stored files could not be removed. The record deletion stands.
type PartialDeleteError struct {
	FailedKeys []string
	Err        error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("record deleted, failed to remove %d stored file(s): %v", len(e.FailedKeys), e.Err)
}

func (e *PartialDeleteError) Unwrap() error {
	return e.Err
}

// UploadBatchError aborts a batch. Files uploaded before the failure are kept
// and listed in Uploaded.
type UploadBatchError struct {
	Uploaded   []StoredFile
	FailedFile string
	Err        error
}

func (e *UploadBatchError) Error() string {
	return fmt.Sprintf("upload of %q failed after %d file(s): %v", e.FailedFile, len(e.Uploaded), e.Err)
}

func (e *UploadBatchError) Unwrap() error {
	return e.Err
}
