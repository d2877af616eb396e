package bulkupload

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("bulk upload not found")
	ErrInvalidFile    = errors.New("bulk upload must be a non-empty .csv file")
	ErrNotAllowed     = errors.New("only approved suppliers and admins can upload products")
	ErrAlreadyClaimed = errors.New("bulk upload is already being processed")
	ErrJobClosed      = errors.New("bulk upload has already finished")
	ErrInvalidHeader  = errors.New("csv header is missing required columns")
	ErrInvalidMessage = errors.New("invalid bulk upload message")
)

// Status tracks a job from upload to the end of processing.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Columns is the expected CSV header. Only name, category and selling_price
// are required; the others may be left out or empty.
var Columns = []string{
	"name", "brand", "category", "description",
	"stock_quantity", "cost_price", "selling_price", "image_url",
}

var requiredColumns = []string{"name", "category", "selling_price"}

// maxStoredErrors bounds the per-row errors kept on a job.
const maxStoredErrors = 100

// interruptedMessage is recorded on a job whose worker stopped mid-run.
const interruptedMessage = "processing was interrupted; upload the file again"

// RowError explains why one CSV data row was skipped. Row is the line in the
// uploaded file, so the header is line 1 and the first data row is line 2.
// Row 0 marks an error about the file as a whole.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Job is one uploaded file and the outcome of processing it.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	FileName   string     `json:"file_name"`
	StorageKey string     `json:"storage_key"`
	Status     Status     `json:"status"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
	Errors     []RowError `json:"errors,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Message is published to the bulk-upload queue for the worker.
type Message struct {
	JobID      uuid.UUID `json:"job_id"`
	StorageKey string    `json:"storage_key"`
	UserID     uuid.UUID `json:"user_id"`
}

// Result is the outcome recorded when processing ends.
type Result struct {
	Status    Status
	Processed int
	Failed    int
	Errors    []RowError
}
