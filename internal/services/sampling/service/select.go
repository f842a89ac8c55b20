package service

import (
	"context"
	"time"

	"threadsample/internal/adapters/csvout"
	"threadsample/internal/adapters/idlist"
	"threadsample/internal/core/quota"
	"threadsample/internal/core/tally"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
)

// SelectSubmissions counts qualifying comments (pass 1) and then admits submissions under the
// monthly quota (pass 2), writing the submission table and optionally its id list
func (s *Service) SelectSubmissions(ctx context.Context, req domain.SelectRequest) (rep domain.SelectReport, err error) {
	if err := required("comments", req.CommentsPath, "submissions", req.SubmissionsPath, "out", req.OutPath); err != nil {
		return rep, err
	}

	table, err := s.tally(logger.WithStage(ctx, "tally"), req.CommentsPath, &rep)
	if err != nil {
		return rep, err
	}

	ids, err := s.selectInto(logger.WithStage(ctx, "select"), req, table, &rep)
	if err != nil {
		return rep, err
	}

	if req.IDsPath != "" {
		if err := s.writeIDs(ctx, req.IDsPath, ids); err != nil {
			return rep, err
		}
		rep.IDs = len(ids)
	}
	return rep, nil
}

func (s *Service) tally(ctx context.Context, path string, rep *domain.SelectReport) (table tally.Table, err error) {
	log := logger.C(ctx)
	started := s.now()
	log.Info().Str("archive", path).Msg("pass started")

	src, err := s.Archives.Open(path)
	if err != nil {
		return table, err
	}
	defer closeInto(&err, src, path)

	agg := tally.Aggregator{
		Classifier:    s.Cfg.Classifier,
		ProgressEvery: s.Cfg.Selector.ProgressEvery,
		Progress: func(st tally.Stats) {
			log.Debug().Int("lines", st.Lines).Int("counted", st.Counted).Msg("progress")
		},
	}
	table, st, err := agg.Run(ctx, src)
	rep.Tally = st
	rep.CommentsArchive = src.Stats()
	if err != nil {
		return table, err
	}
	rep.TallyCells = table.Len()
	rep.TallyPosts = len(table.Posts())

	log.Info().
		Int("lines", st.Lines).
		Int("malformed", st.Malformed).
		Int("removed", st.Removed).
		Int("not_top_level", st.NotTopLevel).
		Int("out_of_window", st.OutOfWindow).
		Int("counted", st.Counted).
		Int("cells", rep.TallyCells).
		Int("posts", rep.TallyPosts).
		Int("dropped_tail", rep.CommentsArchive.Dropped).
		Dur("elapsed", time.Since(started)).
		Msg("pass completed")
	return table, nil
}

func (s *Service) selectInto(ctx context.Context, req domain.SelectRequest, table tally.Table, rep *domain.SelectReport) (ids []string, err error) {
	log := logger.C(ctx)
	started := s.now()
	log.Info().Str("archive", req.SubmissionsPath).Int("quota", s.Cfg.Selector.Quota).
		Int("threshold", s.Cfg.Selector.Threshold).Msg("pass started")

	src, err := s.Archives.Open(req.SubmissionsPath)
	if err != nil {
		return nil, err
	}
	defer closeInto(&err, src, req.SubmissionsPath)

	out, err := s.Files.Create(req.OutPath)
	if err != nil {
		return nil, err
	}
	defer closeInto(&err, out, req.OutPath)

	w, err := csvout.NewSubmissionWriter(out, s.Cfg.Format)
	if err != nil {
		return nil, err
	}

	sel := s.Cfg.Selector
	sel.Progress = func(st quota.Stats) {
		log.Debug().Int("lines", st.Lines).Int("admitted", st.Admitted).Msg("progress")
	}
	buckets, st, err := sel.Select(ctx, src, table, func(a quota.Admitted) error {
		ids = append(ids, a.Submission.ID)
		return w.Write(a.Submission)
	})
	rep.Select = st
	rep.SubsArchive = src.Stats()
	if err != nil {
		return nil, err
	}
	sum, err := w.Close()
	if err != nil {
		return nil, err
	}
	rep.Output = sum

	for _, b := range buckets.Keys() {
		rep.Buckets = append(rep.Buckets, domain.BucketCount{Bucket: b, Count: buckets.Count(b)})
	}
	full := 0
	for _, bc := range rep.Buckets {
		if bc.Count >= sel.Quota {
			full++
		}
	}

	log.Info().
		Int("lines", st.Lines).
		Int("malformed", st.Malformed).
		Int("out_of_window", st.OutOfWindow).
		Int("below_threshold", st.BelowThreshold).
		Int("quota_full", st.QuotaFull).
		Int("admitted", st.Admitted).
		Int("months", len(rep.Buckets)).
		Int("months_full", full).
		Dur("elapsed", time.Since(started)).
		Msg("pass completed")
	logSummary(ctx, req.OutPath, sum)
	return ids, nil
}

func (s *Service) writeIDs(ctx context.Context, path string, ids []string) (err error) {
	out, err := s.Files.Create(path)
	if err != nil {
		return err
	}
	defer closeInto(&err, out, path)
	if err := idlist.Write(out, ids); err != nil {
		return err
	}
	logger.C(ctx).Info().Str("path", path).Int("ids", len(ids)).Msg("id list written")
	return nil
}
