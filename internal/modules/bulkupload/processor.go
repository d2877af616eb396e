package bulkupload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Processor turns a queued upload into catalog products. It runs in the worker.
type Processor struct {
	repo       Repository
	store      storage.Store
	products   Products
	suppliers  Suppliers
	staleAfter time.Duration
	now        func() time.Time
	log        logrus.FieldLogger
}

// NewProcessor creates a processor. A job left in processing for longer than
// staleAfter is treated as abandoned by Sweep.
func NewProcessor(repo Repository, store storage.Store, products Products, suppliers Suppliers, staleAfter time.Duration, log logrus.FieldLogger) *Processor {
	return &Processor{
		repo:       repo,
		store:      store,
		products:   products,
		suppliers:  suppliers,
		staleAfter: staleAfter,
		now:        time.Now,
		log:        log.WithField("module", "bulkupload"),
	}
}

// Handler adapts Process to the broker. Undecodable messages and unknown
// jobs are dropped. A job that was already claimed is acknowledged; if its
// worker died, Sweep fails it once the claim goes stale.
func (p *Processor) Handler() broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return broker.Permanent(fmt.Errorf("%w: %v", ErrInvalidMessage, err))
		}
		if msg.JobID == uuid.Nil || msg.StorageKey == "" {
			return broker.Permanent(ErrInvalidMessage)
		}
		_, err := p.Process(ctx, msg)
		switch {
		case errors.Is(err, ErrAlreadyClaimed):
			p.log.WithField("job_id", msg.JobID).Info("bulk upload already claimed, skipping")
			return nil
		case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
			return broker.Permanent(err)
		}
		return err
	}
}

// Process claims the job, creates one product per valid row and records the
// outcome. Row failures are recorded on the job rather than returned.
func (p *Processor) Process(ctx context.Context, msg Message) (*Result, error) {
	job, err := p.repo.GetByID(ctx, msg.JobID)
	if err != nil {
		return nil, err
	}
	entry := p.log.WithFields(logrus.Fields{"job_id": job.ID, "storage_key": msg.StorageKey})

	// Open before claiming so a transient storage error leaves the job queued
	// for the redelivery.
	f, err := p.store.Open(ctx, msg.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) && job.Status == StatusQueued {
			p.finish(ctx, entry, job.ID, &Result{Status: StatusFailed, Errors: []RowError{{Message: "uploaded file is missing"}}})
		}
		return nil, err
	}
	defer f.Close()

	if err := p.repo.Claim(ctx, job.ID); err != nil {
		return nil, err
	}

	rows, err := Parse(f)
	if err != nil {
		res := &Result{Status: StatusFailed, Errors: []RowError{{Message: err.Error()}}}
		p.finish(ctx, entry, job.ID, res)
		return res, nil
	}

	res := &Result{}
	for _, row := range rows {
		if row.Err == nil {
			_, row.Err = p.products.CreateProduct(ctx, job.SupplierID, row.Request)
		}
		if row.Err != nil {
			res.Failed++
			if len(res.Errors) < maxStoredErrors {
				res.Errors = append(res.Errors, RowError{Row: row.Line, Message: row.Err.Error()})
			}
			continue
		}
		res.Processed++
	}

	res.Status = StatusCompleted
	if res.Processed == 0 && res.Failed > 0 {
		res.Status = StatusFailed
	}

	if job.SupplierID != nil && res.Processed > 0 {
		if err := p.suppliers.RefreshProductCount(ctx, *job.SupplierID); err != nil {
			entry.WithError(err).Warn("product count refresh failed")
		}
	}
	p.finish(ctx, entry, job.ID, res)
	return res, nil
}

func (p *Processor) finish(ctx context.Context, entry logrus.FieldLogger, id uuid.UUID, res *Result) {
	err := p.repo.Finish(ctx, id, *res)
	if errors.Is(err, ErrJobClosed) {
		entry.Warn("bulk upload was closed before processing finished, result dropped")
		return
	}
	if err != nil {
		entry.WithError(err).Error("failed to record bulk upload result")
		return
	}
	entry.WithFields(logrus.Fields{
		"status":    res.Status,
		"processed": res.Processed,
		"failed":    res.Failed,
	}).Info("bulk upload processed")
}

// Sweep fails every job whose claim is older than the stale window, so an
// upload interrupted by a worker restart still reaches a final status.
func (p *Processor) Sweep(ctx context.Context) (int, error) {
	ids, err := p.repo.FailStale(ctx, p.now().Add(-p.staleAfter))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		p.log.WithField("job_id", id).Warn("bulk upload abandoned mid-run, marked failed")
	}
	return len(ids), nil
}

// RunSweeper calls Sweep on start and then every interval until ctx ends.
func (p *Processor) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := p.Sweep(ctx); err != nil && ctx.Err() == nil {
			p.log.WithError(err).Error("bulk upload sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
