package domain

import (
	"context"
	"io"
)

// SelectorPort runs the tally and selection passes
type SelectorPort interface {
	SelectSubmissions(ctx context.Context, req SelectRequest) (SelectReport, error)
}

// SamplerPort runs the sampling pass
type SamplerPort interface {
	SampleComments(ctx context.Context, req SampleRequest) (SampleReport, error)
}

// IDsPort extracts the id column of a submission table
type IDsPort interface {
	ExtractIDs(ctx context.Context, req IDsRequest) (IDsReport, error)
}

// VerifyPort hashes a table on disk the way the writers do
type VerifyPort interface {
	VerifyTable(ctx context.Context, req VerifyRequest) (VerifyReport, error)
}

// LineReader is a forward-only archive line stream
type LineReader interface {
	Next() (string, error)
	Close() error
	Stats() ArchiveStats
}

// ArchiveOpener opens archives by path
type ArchiveOpener interface {
	Open(path string) (LineReader, error)
}

// Files is the file access the service needs for tables and id lists
type Files interface {
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
}
