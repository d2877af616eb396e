package bulkupload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Service interface {
	// Upload stores the file, records a queued job and hands it to the worker.
	Upload(ctx context.Context, sess session.Session, fileName string, r io.Reader) (*Job, error)
	GetJob(ctx context.Context, sess session.Session, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID) ([]*Job, error)
}

// Suppliers resolves the uploading user's supplier account.
type Suppliers interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*supplier.Supplier, error)
	RefreshProductCount(ctx context.Context, id uuid.UUID) error
}

// Products creates catalog entries.
type Products interface {
	CreateProduct(ctx context.Context, supplierID *uuid.UUID, req catalog.ProductRequest) (*catalog.Product, error)
}

type service struct {
	repo      Repository
	store     storage.Store
	suppliers Suppliers
	publisher broker.Publisher
	queue     string
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(repo Repository, store storage.Store, suppliers Suppliers, publisher broker.Publisher, queue string, log logrus.FieldLogger) Service {
	return &service{
		repo:      repo,
		store:     store,
		suppliers: suppliers,
		publisher: publisher,
		queue:     queue,
		log:       log.WithField("module", "bulkupload"),
		now:       time.Now,
	}
}

// uploader returns the supplier the new products will belong to. Admins may
// upload without a supplier account; everyone else needs an approved one.
func (s *service) uploader(ctx context.Context, sess session.Session) (*uuid.UUID, error) {
	sup, err := s.suppliers.GetByUser(ctx, sess.UserID)
	switch {
	case err == nil && sup.Status == supplier.StatusApproved:
		return &sup.ID, nil
	case err != nil && !errors.Is(err, supplier.ErrNotFound):
		return nil, err
	case sess.IsAdmin():
		return nil, nil
	}
	return nil, ErrNotAllowed
}

func (s *service) Upload(ctx context.Context, sess session.Session, fileName string, r io.Reader) (*Job, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if !strings.EqualFold(path.Ext(base), ".csv") {
		return nil, ErrInvalidFile
	}
	supplierID, err := s.uploader(ctx, sess)
	if err != nil {
		return nil, err
	}

	key, _, err := s.store.Put(ctx, storage.BucketBulkUploads, fmt.Sprintf("%d-%s", s.now().Unix(), base), r)
	if err != nil {
		return nil, fmt.Errorf("store bulk upload: %w", err)
	}

	job := &Job{
		ID:         uuid.New(),
		UserID:     sess.UserID,
		SupplierID: supplierID,
		FileName:   base,
		StorageKey: key,
		Status:     StatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{"job_id": job.ID, "storage_key": key})
	msg := Message{JobID: job.ID, StorageKey: key, UserID: sess.UserID}
	if err := s.publisher.Publish(ctx, s.queue, msg); err != nil {
		entry.WithError(err).Error("failed to queue bulk upload")
		res := Result{Status: StatusFailed, Errors: []RowError{{Message: "could not queue the file for processing"}}}
		if ferr := s.repo.Finish(ctx, job.ID, res); ferr != nil {
			entry.WithError(ferr).Warn("failed to mark bulk upload as failed")
		}
		return nil, fmt.Errorf("queue bulk upload: %w", err)
	}
	entry.Info("bulk upload queued")
	return job, nil
}

func (s *service) GetJob(ctx context.Context, sess session.Session, id uuid.UUID) (*Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrNotFound
	}
	return j, nil
}

func (s *service) ListJobs(ctx context.Context, userID uuid.UUID) ([]*Job, error) {
	return s.repo.ListByUser(ctx, userID, 20)
}
