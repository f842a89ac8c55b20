package service

import (
	"context"
	"time"

	"threadsample/internal/adapters/csvout"
	"threadsample/internal/adapters/idlist"
	"threadsample/internal/core/reservoir"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
)

// SampleComments loads submission metadata and the target list, then reservoir samples
// top-level comments for each target (pass 3) and writes the comment table
func (s *Service) SampleComments(ctx context.Context, req domain.SampleRequest) (rep domain.SampleReport, err error) {
	if err := required("comments", req.CommentsPath, "submissions", req.SubmissionsPath, "out", req.OutPath); err != nil {
		return rep, err
	}
	ctx = logger.WithStage(ctx, "sample")
	log := logger.C(ctx)

	meta, err := s.loadMeta(req.SubmissionsPath)
	if err != nil {
		return rep, err
	}
	targets, err := s.loadTargets(req)
	if err != nil {
		return rep, err
	}
	rep.Targets = len(targets)

	months := make(map[string]reservoir.Month, len(meta))
	for id, m := range meta {
		months[id] = reservoir.Month{Year: m.Year, Month: m.Month}
	}

	started := s.now()
	log.Info().
		Str("archive", req.CommentsPath).
		Int("targets", len(targets)).
		Str("policy", string(s.Cfg.Sampler.Policy)).
		Int("k", s.Cfg.Sampler.K).
		Bool("early_stop", s.Cfg.Sampler.EarlyStop).
		Msg("pass started")

	res, st, err := s.sample(ctx, req.CommentsPath, targets, months, &rep)
	rep.Sample = st
	if err != nil {
		return rep, err
	}
	rep.Complete = len(res.Complete)
	rep.Short = len(res.Short)

	log.Info().
		Int("lines", st.Lines).
		Int("malformed", st.Malformed).
		Int("removed", st.Removed).
		Int("not_top_level", st.NotTopLevel).
		Int("not_target", st.NotTarget).
		Int("out_of_window", st.OutOfWindow).
		Int("wrong_month", st.WrongMonth).
		Int("qualified", st.Qualified).
		Int("replaced", st.Replaced).
		Int("discarded", st.Discarded).
		Int("complete", rep.Complete).
		Int("short", rep.Short).
		Bool("stopped_early", st.StoppedEarly).
		Dur("elapsed", time.Since(started)).
		Msg("pass completed")

	sum, err := s.writeComments(req.OutPath, res, meta)
	if err != nil {
		return rep, err
	}
	rep.Output = sum
	logSummary(ctx, req.OutPath, sum)
	return rep, nil
}

func (s *Service) sample(
	ctx context.Context,
	path string,
	targets []string,
	months map[string]reservoir.Month,
	rep *domain.SampleReport,
) (res reservoir.Result, st reservoir.Stats, err error) {
	log := logger.C(ctx)
	// metadata is checked before the archive is touched
	for _, id := range targets {
		if _, ok := months[id]; !ok {
			return res, st, perr.WithField(
				perr.NotFoundf("target %q has no row in the submission table", id), "post_id")
		}
	}

	src, err := s.Archives.Open(path)
	if err != nil {
		return res, st, err
	}
	defer closeInto(&err, src, path)

	smp := s.Cfg.Sampler
	smp.Rand = s.Cfg.NewRand()
	smp.Progress = func(st reservoir.Stats) {
		log.Debug().Int("lines", st.Lines).Int("qualified", st.Qualified).Int("satisfied", st.Satisfied).Msg("progress")
	}
	res, st, err = smp.Sample(ctx, src, targets, months, s.Cfg.Classifier)
	rep.CommentsArchive = src.Stats()
	return res, st, err
}

func (s *Service) loadMeta(path string) (meta map[string]domain.SubmissionMeta, err error) {
	f, err := s.Files.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeInto(&err, f, path)
	return csvout.ReadSubmissionMeta(f)
}

func (s *Service) loadTargets(req domain.SampleRequest) (ids []string, err error) {
	path := req.IDsPath
	if path == "" {
		path = req.SubmissionsPath
	}
	f, err := s.Files.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeInto(&err, f, path)
	if req.IDsPath == "" {
		return csvout.ReadSubmissionIDs(f)
	}
	return idlist.Read(f)
}

func (s *Service) writeComments(path string, res reservoir.Result, meta map[string]domain.SubmissionMeta) (sum csvout.Summary, err error) {
	out, err := s.Files.Create(path)
	if err != nil {
		return sum, err
	}
	defer closeInto(&err, out, path)

	w, err := csvout.NewCommentWriter(out, s.Cfg.Format)
	if err != nil {
		return sum, err
	}
	for _, row := range res.Rows {
		if err := w.Write(row.PostID, row.Comment, meta[row.PostID].Text); err != nil {
			return sum, err
		}
	}
	return w.Close()
}
