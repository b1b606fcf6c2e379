// Package export projects a user's transactions onto a caller-chosen set of
// fields and encodes the result as CSV.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"findash/internal/domain/transaction"
	"findash/internal/shared/apperr"
)

const DefaultDateLayout = "1/2/2006"

var tracer = otel.Tracer("findash/export")

type Filters struct {
	Category transaction.Category `json:"category,omitempty"`
	Status   transaction.Status   `json:"status,omitempty"`
	Search   string               `json:"search,omitempty"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Request struct {
	Fields    []Field    `json:"selectedFields"`
	Filters   Filters    `json:"filters"`
	DateRange *DateRange `json:"dateRange,omitempty"`
	Filename  string     `json:"filename,omitempty"`
}

// Projection is a rendered table: one header label per selected field and
// one row per matching transaction, newest first.
type Projection struct {
	Header []string
	Rows   [][]string
}

func (p *Projection) Empty() bool {
	return len(p.Rows) == 0
}

type Projector struct {
	store      transaction.Store
	loc        *time.Location
	dateLayout string
}

func NewProjector(store transaction.Store, loc *time.Location, dateLayout string) *Projector {
	if loc == nil {
		loc = time.Local
	}
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Projector{store: store, loc: loc, dateLayout: dateLayout}
}

// Build validates req, loads the matching transactions and renders them.
func (p *Projector) Build(ctx context.Context, userID int64, req Request) (*Projection, error) {
	filter, err := p.filter(req)
	if err != nil {
		return nil, err
	}

	header := make([]string, 0, len(req.Fields))
	formatters := make([]formatter, 0, len(req.Fields))
	for _, f := range req.Fields {
		fi, _ := f.info()
		header = append(header, fi.Label)
		formatters = append(formatters, p.formatter(f))
	}

	ctx, span := tracer.Start(ctx, "export.Build", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("export.fields", len(req.Fields)),
	))
	defer span.End()

	txs, err := p.store.FindByUser(ctx, userID, filter, transaction.Page{})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.rows", len(txs)))

	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		row := make([]string, len(formatters))
		for i, format := range formatters {
			row[i] = format(t)
		}
		rows = append(rows, row)
	}
	return &Projection{Header: header, Rows: rows}, nil
}

func (p *Projector) filter(req Request) (transaction.Filter, error) {
	var fe apperr.FieldErrors

	if len(req.Fields) == 0 {
		fe.Add("selectedFields", "select at least one field")
	}
	seen := make(map[Field]bool, len(req.Fields))
	for _, f := range req.Fields {
		if _, ok := f.info(); !ok {
			fe.Add("selectedFields", fmt.Sprintf("unknown field %q", f))
			continue
		}
		if seen[f] {
			fe.Add("selectedFields", fmt.Sprintf("duplicate field %q", f))
		}
		seen[f] = true
	}

	filter := transaction.Filter{
		Category: req.Filters.Category,
		Status:   req.Filters.Status,
		Search:   strings.TrimSpace(req.Filters.Search),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		fe.Add("filters.category", "must be Revenue or Expense")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fe.Add("filters.status", "must be Paid or Pending")
	}

	if dr := req.DateRange; dr != nil {
		start, err := parseBound(dr.Start, p.loc, false)
		if err != nil {
			fe.Add("dateRange.start", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		end, err2 := parseBound(dr.End, p.loc, true)
		if err2 != nil {
			fe.Add("dateRange.end", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		if err == nil && err2 == nil {
			filter.From, filter.To = &start, &end
		}
	}

	return filter, fe.Err()
}
