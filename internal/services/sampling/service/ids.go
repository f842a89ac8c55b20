package service

import (
	"context"

	"threadsample/internal/adapters/csvout"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
)

// ExtractIDs copies the id column of a submission table into a plain id list
func (s *Service) ExtractIDs(ctx context.Context, req domain.IDsRequest) (rep domain.IDsReport, err error) {
	if err := required("submissions", req.SubmissionsPath, "out", req.OutPath); err != nil {
		return rep, err
	}
	ctx = logger.WithStage(ctx, "ids")

	in, err := s.Files.Open(req.SubmissionsPath)
	if err != nil {
		return rep, err
	}
	ids, err := csvout.ReadSubmissionIDs(in)
	closeInto(&err, in, req.SubmissionsPath)
	if err != nil {
		return rep, err
	}

	if err := s.writeIDs(ctx, req.OutPath, ids); err != nil {
		return rep, err
	}
	rep.IDs = len(ids)
	return rep, nil
}
