package smart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

// Page is one page of a remote paged collection normalized to a uniform
// shape. Offset-paged collections advance by Offset+len(Items); cursor
// collections advance by Next, which is empty on the final page.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Next   string `json:"next,omitempty"` // Cursor for cursor-paged collections
}

// PageRequest addresses one page of a remote collection. Offset-paged
// sources read Limit and Offset; cursor-paged sources read Limit and
// After and ignore Offset.
type PageRequest struct {
	Limit  int
	Offset int
	After  string
}

// TrackSource yields pages of candidate tracks from a remote collection
// (saved tracks, a playlist's tracks, an album's tracks).
type TrackSource interface {
	// FetchPage retrieves one page. A fetch error aborts the whole
	// retrieval; paging is not best-effort.
	FetchPage(ctx context.Context, req PageRequest) (*Page[models.Track], error)

	// Cursored reports whether the source pages by cursor instead of
	// offset. Cursor sources cannot be prefetched concurrently because
	// each page addresses the next.
	Cursored() bool
}

// FoldFunc consumes one page of retrieved tracks in retrieval order.
// Returning false stops the stream early, once the caller has enough
// matched tracks to satisfy its limit.
type FoldFunc func(tracks []models.Track) bool

// Pipeline paginates across a TrackSource and hands pages to a fold in
// retrieval order, so filtering and ordered insertion stay deterministic
// regardless of how pages were fetched.
type Pipeline struct {
	Source   TrackSource
	PageSize int
	Workers  int // Concurrent page fetches for Collect without an early stop
	Logger   *log.Logger
}

const (
	defaultPageSize = 50
	defaultWorkers  = 4
	maxWorkers      = 10
)

func (p *Pipeline) pageSize() int {
	if p.PageSize <= 0 || p.PageSize > defaultPageSize {
		return defaultPageSize
	}
	return p.PageSize
}

func (p *Pipeline) workers() int {
	if p.Workers <= 0 {
		return defaultWorkers
	}
	if p.Workers > maxWorkers {
		return maxWorkers
	}
	return p.Workers
}

// Stream pages through the source sequentially, folding each page as it
// arrives. Used when the caller may stop early: sequential paging avoids
// fetching pages a satisfied limit would discard.
func (p *Pipeline) Stream(ctx context.Context, fold FoldFunc) error {
	limit := p.pageSize()
	offset := 0
	cursor := ""

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := p.Source.FetchPage(ctx, PageRequest{Limit: limit, Offset: offset, After: cursor})
		if err != nil {
			if p.Logger != nil {
				p.Logger.Error("page fetch failed, aborting retrieval", "offset", offset, "error", err)
			}
			return fmt.Errorf("%w: page at offset %d: %v", shared.ErrRetrievalFailed, offset, err)
		}

		if len(page.Items) == 0 {
			return nil
		}

		if !fold(page.Items) {
			return nil
		}

		offset += len(page.Items)
		if p.Source.Cursored() {
			if page.Next == "" {
				return nil
			}
			cursor = page.Next
			continue
		}

		if page.Total > 0 && offset >= page.Total {
			return nil
		}
	}
}

type fetchedPage struct {
	offset int
	page   *Page[models.Track]
	err    error
}

// StreamAll retrieves the entire collection, prefetching pages with a
// bounded worker pool when the source is offset-paged. Pages are folded
// in page order, not completion order, so the resulting candidate pool
// and tie-breaks are identical to a sequential run. Cursor sources fall
// back to sequential paging.
func (p *Pipeline) StreamAll(ctx context.Context, fold FoldFunc) error {
	if p.Source.Cursored() {
		return p.Stream(ctx, fold)
	}

	limit := p.pageSize()

	first, err := p.Source.FetchPage(ctx, PageRequest{Limit: limit, Offset: 0})
	if err != nil {
		if p.Logger != nil {
			p.Logger.Error("page fetch failed, aborting retrieval", "offset", 0, "error", err)
		}
		return fmt.Errorf("%w: first page: %v", shared.ErrRetrievalFailed, err)
	}
	if len(first.Items) == 0 {
		return nil
	}
	if !fold(first.Items) {
		return nil
	}

	total := first.Total
	if total <= len(first.Items) {
		return nil
	}

	var offsets []int
	for offset := len(first.Items); offset < total; offset += limit {
		offsets = append(offsets, offset)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(offsets))
	results := make(chan fetchedPage, len(offsets))

	var wg sync.WaitGroup
	for i := 0; i < p.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for offset := range jobs {
				select {
				case <-ctx.Done():
					results <- fetchedPage{offset: offset, err: ctx.Err()}
					continue
				default:
				}

				page, err := p.Source.FetchPage(ctx, PageRequest{Limit: limit, Offset: offset})
				results <- fetchedPage{offset: offset, page: page, err: err}
			}
		}()
	}

	for _, offset := range offsets {
		jobs <- offset
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect every page before folding so pages apply in offset order.
	fetched := make(map[int]*Page[models.Track], len(offsets))
	var fetchErr error
	for result := range results {
		if result.err != nil {
			if fetchErr == nil {
				if p.Logger != nil {
					p.Logger.Error("page fetch failed, aborting retrieval", "offset", result.offset, "error", result.err)
				}
				fetchErr = fmt.Errorf("%w: page at offset %d: %v", shared.ErrRetrievalFailed, result.offset, result.err)
				cancel()
			}
			continue
		}
		fetched[result.offset] = result.page
	}

	if fetchErr != nil {
		return fetchErr
	}

	sort.Ints(offsets)
	for _, offset := range offsets {
		page, ok := fetched[offset]
		if !ok {
			return fmt.Errorf("%w: missing page at offset %d", shared.ErrRetrievalFailed, offset)
		}
		if !fold(page.Items) {
			return nil
		}
	}

	return nil
}
