package bulkupload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/shopspring/decimal"
)

// Row is one parsed data row. Line is where the row starts in the file. Err
// is set when the row cannot become a product request.
type Row struct {
	Line    int
	Request catalog.ProductRequest
	Err     error
}

// Parse reads the header and then every data row of a bulk upload. Columns
// are matched by name, case-insensitively, so their order does not matter.
// A malformed row is reported on its Row and does not stop parsing.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrInvalidHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rows = append(rows, Row{Line: perr.StartLine, Err: perr.Err})
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		req, err := toRequest(rec, index)
		rows = append(rows, Row{Line: line, Request: req, Err: err})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func toRequest(rec []string, index map[string]int) (catalog.ProductRequest, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	req := catalog.ProductRequest{
		Name:        get("name"),
		Brand:       get("brand"),
		Category:    get("category"),
		Description: get("description"),
		ImageURL:    get("image_url"),
		CostPrice:   decimal.Zero,
	}
	if req.Name == "" {
		return req, errors.New("name is required")
	}
	if _, err := catalog.ParseCategory(req.Category); err != nil {
		return req, err
	}

	if raw := get("stock_quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, fmt.Errorf("stock_quantity %q is not a non-negative integer", raw)
		}
		req.StockQuantity = n
	}
	if raw := get("cost_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return req, fmt.Errorf("cost_price %q is not a valid amount", raw)
		}
		req.CostPrice = d
	}
	raw := get("selling_price")
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return req, fmt.Errorf("selling_price %q must be a positive amount", raw)
	}
	req.SellingPrice = d
	return req, nil
}
