package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Request selects a report.
type Request struct {
	Type   Type
	Period Period
	Format Format
}

// File is a rendered report ready to download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Service interface {
	Snapshot(ctx context.Context, t Type, p Period) (*Snapshot, error)
	Generate(ctx context.Context, req Request) (*File, error)
}

type service struct {
	source            Source
	lowStockThreshold int
	log               logrus.FieldLogger
	now               func() time.Time
}

func NewService(source Source, lowStockThreshold int, log logrus.FieldLogger) Service {
	return &service{
		source:            source,
		lowStockThreshold: lowStockThreshold,
		log:               log.WithField("module", "report"),
		now:               time.Now,
	}
}

func (s *service) Snapshot(ctx context.Context, t Type, p Period) (*Snapshot, error) {
	now := s.now()
	var in Input
	var err error

	if t == TypeSales || t == TypeFull {
		if in.Orders, err = s.source.Orders(ctx, Since(p, now)); err != nil {
			return nil, err
		}
	}
	// Products feed both the inventory sections and cost of goods.
	if in.Products, err = s.source.Products(ctx); err != nil {
		return nil, err
	}
	if t == TypeFull {
		if in.Suppliers, err = s.source.Suppliers(ctx); err != nil {
			return nil, err
		}
	}
	return Build(in, t, p, now, s.lowStockThreshold), nil
}

func (s *service) Generate(ctx context.Context, req Request) (*File, error) {
	snap, err := s.Snapshot(ctx, req.Type, req.Period)
	if err != nil {
		return nil, err
	}

	f := &File{Name: Filename(req, snap.GeneratedAt)}
	var buf bytes.Buffer
	switch req.Format {
	case FormatJSON:
		f.ContentType = "application/json"
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	default:
		f.ContentType = "text/csv; charset=utf-8"
		err = WriteCSV(&buf, snap)
	}
	if err != nil {
		return nil, err
	}
	f.Body = buf.Bytes()

	s.log.WithFields(logrus.Fields{
		"type":   req.Type,
		"period": req.Period,
		"format": req.Format,
		"bytes":  len(f.Body),
	}).Info("report generated")
	return f, nil
}

// Filename is <type>-report-<period>-<YYYY-MM-DD>.<format>.
func Filename(req Request, at time.Time) string {
	format := req.Format
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s-report-%s-%s.%s", req.Type, req.Period, at.Format(dayLayout), format)
}
