package storage

import (
	"context"

	"sponsorFlow/internal/model"
)

// ReportSink receives display-only transfer attempt projections.
type ReportSink interface {
	PutTransferBatch(ctx context.Context, records []model.TransferRecord) error
}
