package source

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// DefaultMaxOffset is the pagination safety bound: a source still reporting
// "more data" past this offset is treated as misbehaving.
const DefaultMaxOffset = 50000

// PaginationSafetyError means the offset exceeded the safety bound before the
// source stopped signalling more data. Accumulated features are still
// returned alongside it.
type PaginationSafetyError struct {
	SourceID string
	Offset   int
}

func (e *PaginationSafetyError) Error() string {
	return "paginate " + e.SourceID + ": offset " + strconv.Itoa(e.Offset) + " exceeded safety bound"
}

// Paginator drives the paged query protocol against a source.
type Paginator struct {
	// MaxOffset overrides DefaultMaxOffset when positive.
	MaxOffset int
}

// Collect accumulates every page of a query into a flat feature list. The
// loop advances offset by the page size while the source signals more data
// (an explicit flag or a full page) and stops on a short page, a missing
// signal, or the safety bound. A mid-pagination failure aborts only the
// remaining pages: whatever was accumulated is returned with the error.
func (p Paginator) Collect(ctx context.Context, src SpatialSource, req Request) ([]RawFeature, error) {
	log := zap.L().With(
		zap.String("component", "source.paginator"),
		zap.String("source", src.ID()),
	)

	maxOffset := p.MaxOffset
	if maxOffset <= 0 {
		maxOffset = DefaultMaxOffset
	}
	pageSize := src.PageSize()

	var features []RawFeature
	offset := 0
	for {
		page, err := src.Query(ctx, req, offset)
		if err != nil {
			log.Warn("pagination aborted mid-stream",
				zap.Int("offset", offset),
				zap.Int("accumulated", len(features)),
				zap.Error(err),
			)
			return features, err
		}

		features = append(features, page.Features...)

		n := len(page.Features)
		if n < pageSize && !page.HasMore {
			break
		}

		offset += pageSize
		if offset > maxOffset {
			log.Warn("pagination safety bound reached",
				zap.Int("offset", offset),
				zap.Int("accumulated", len(features)),
			)
			return features, &PaginationSafetyError{SourceID: src.ID(), Offset: offset}
		}
	}

	log.Debug("pagination complete",
		zap.Int("features", len(features)),
		zap.Int("pages", offset/pageSize+1),
	)
	return features, nil
}
