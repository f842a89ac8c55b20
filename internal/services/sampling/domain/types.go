// Package domain holds the request, report and port types of the sampling pipeline
package domain

import (
	"threadsample/internal/adapters/csvout"
	"threadsample/internal/core/quota"
	"threadsample/internal/core/reservoir"
	"threadsample/internal/core/tally"
)

// SubmissionMeta re-exports the per-submission metadata read back from the submission table
type SubmissionMeta = csvout.Meta

// Summary re-exports the output table summary
type Summary = csvout.Summary

// SelectRequest names the inputs and outputs of the tally and selection passes
type SelectRequest struct {
	CommentsPath    string
	SubmissionsPath string
	OutPath         string // submission table
	IDsPath         string // optional id list written next to the table
}

// BucketCount is one admitted month
type BucketCount struct {
	Bucket quota.Bucket
	Count  int
}

// ArchiveStats is what the decoder saw in one archive
type ArchiveStats struct {
	Lines   int
	Bytes   int64
	Dropped int
}

// SelectReport summarizes a selection run
type SelectReport struct {
	Tally           tally.Stats
	TallyCells      int
	TallyPosts      int
	Select          quota.Stats
	Buckets         []BucketCount
	CommentsArchive ArchiveStats
	SubsArchive     ArchiveStats
	Output          Summary
	IDs             int
}

// SampleRequest names the inputs and output of the sampling pass.
// When IDsPath is empty the target list is the id column of the submission table
type SampleRequest struct {
	CommentsPath    string
	SubmissionsPath string
	IDsPath         string
	OutPath         string
}

// SampleReport summarizes a sampling run
type SampleReport struct {
	Targets         int
	Complete        int
	Short           int
	Sample          reservoir.Stats
	CommentsArchive ArchiveStats
	Output          Summary
}

// IDsRequest names the submission table to read and the id list to write
type IDsRequest struct {
	SubmissionsPath string
	OutPath         string
}

// IDsReport summarizes an id extraction
type IDsReport struct {
	IDs int
}

// VerifyRequest names a written table and, optionally, the xxhash a previous run logged for it
type VerifyRequest struct {
	Path string
	Want string // 16 hex digits; empty only reports
}

// VerifyReport carries the recomputed digest
type VerifyReport struct {
	Summary Summary
	Match   bool
}
