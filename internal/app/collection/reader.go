package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deceit/internal/app/ports"
	"deceit/internal/domain/collection"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	DefaultPageSize = 50
	DefaultMaxPages = 1000
)

var (
	ErrInvalidQuery      = errors.New("invalid collection query")
	ErrFetchFailure      = errors.New("collection fetch failed")
	ErrStalledPagination = errors.New("pagination stalled")
	ErrPageLimitExceeded = errors.New("pagination page limit exceeded")
)

// FetchError reports which page of a drain failed.
type FetchError struct {
	ObjectID string
	Page     int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.ObjectID, e.Page, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailure, e.Err}
}

// Drainer returns every record of a paged collection in arrival order.
type Drainer interface {
	Drain(ctx context.Context, q collection.Query) ([]collection.Record, bool, error)
}

// Reader walks a paged source one page at a time, forwarding the end
// cursor of each page into the next request.
type Reader struct {
	Source   ports.PageSource
	MaxPages int
	Metrics  ports.PaginationMetrics
}

// Drain fetches pages until the source reports no next page. found is false
// when the object does not exist, in which case records is nil. Any error
// discards what was accumulated.
func (r Reader) Drain(ctx context.Context, q collection.Query) ([]collection.Record, bool, error) {
	if strings.TrimSpace(q.ObjectID) == "" {
		return nil, false, ErrInvalidQuery
	}
	if r.Source == nil {
		return nil, false, fmt.Errorf("page source is not configured")
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	maxPages := r.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	records := []collection.Record{}
	seen := map[string]struct{}{}
	var after *string
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, false, r.fail(ctx, q.ObjectID, "page_limit", fmt.Errorf("%w: %d pages", ErrPageLimitExceeded, maxPages))
		}
		if err := ctx.Err(); err != nil {
			return nil, false, r.fail(ctx, q.ObjectID, "canceled", &FetchError{ObjectID: q.ObjectID, Page: page, Err: err})
		}

		p, found, err := r.Source.FetchPage(ctx, q, after)
		if err != nil {
			return nil, false, r.fail(ctx, q.ObjectID, "fetch", &FetchError{ObjectID: q.ObjectID, Page: page, Err: err})
		}
		if !found {
			if r.Metrics != nil {
				r.Metrics.RecordDrain(q.ObjectID, 0, false)
			}
			return nil, false, nil
		}
		records = append(records, p.Records...)
		if r.Metrics != nil {
			r.Metrics.RecordPage(q.ObjectID, len(p.Records))
		}

		if !p.Info.HasNextPage {
			break
		}
		if p.Info.EndCursor == nil {
			return nil, false, r.fail(ctx, q.ObjectID, "stalled", fmt.Errorf("%w: page %d has more but no end cursor", ErrStalledPagination, page))
		}
		next := *p.Info.EndCursor
		if _, dup := seen[next]; dup {
			return nil, false, r.fail(ctx, q.ObjectID, "stalled", fmt.Errorf("%w: cursor %q repeated on page %d", ErrStalledPagination, next, page))
		}
		seen[next] = struct{}{}
		after = &next
	}

	if r.Metrics != nil {
		r.Metrics.RecordDrain(q.ObjectID, len(records), true)
	}
	return records, true, nil
}

func (r Reader) fail(ctx context.Context, objectID, reason string, err error) error {
	hlog.CtxWarnf(ctx, "drain %s aborted: %v", objectID, err)
	if r.Metrics != nil {
		r.Metrics.RecordDrainFailure(objectID, reason)
	}
	return err
}
