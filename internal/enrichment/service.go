package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marvelous/internal/comic"
	"marvelous/internal/metrics"

	"github.com/rs/zerolog/log"
)

type UpdateRequest struct {
	PersonID int64   `json:"personId" validate:"required,gt=0"`
	ComicIDs []int64 `json:"comicIds" validate:"required,min=1,dive,gt=0"`
}

type UpdateResult struct {
	RunID  string        `json:"runId,omitempty"`
	Comics []comic.Comic `json:"comics"`
}

type Service struct {
	fetcher Fetcher
	comics  comic.Repository
	people  PersonAttacher
	runs    RunRepository
}

func NewService(fetcher Fetcher, comics comic.Repository, people PersonAttacher, runs RunRepository) *Service {
	return &Service{
		fetcher: fetcher,
		comics:  comics,
		people:  people,
		runs:    runs,
	}
}

// Enrich fetches, normalizes and stores each id in order. Ids the gateway
// has no single comic for are skipped. The first failure aborts the batch;
// comics stored before it stay stored.
func (s *Service) Enrich(ctx context.Context, ids []int64) ([]comic.Comic, error) {
	return s.enrich(ctx, ids, &Run{})
}

func (s *Service) enrich(ctx context.Context, ids []int64, run *Run) (stored []comic.Comic, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordBatch(status, time.Since(start))
	}()

	stored = make([]comic.Comic, 0, len(ids))
	for _, id := range ids {
		res, err := s.fetcher.GetComic(ctx, id)
		if err != nil {
			metrics.RecordComic(metrics.OutcomeFailed)
			return stored, fmt.Errorf("fetch comic %d: %w", id, err)
		}

		remote, ok := res.Single()
		if !ok {
			run.Skipped++
			metrics.RecordComic(metrics.OutcomeSkipped)
			evt := log.Debug().Int64("comic_id", id)
			if res != nil {
				evt = evt.Str("code", string(res.Code)).Int64("count", res.Data.Count)
			}
			evt.Msg("enrichment: no single comic, skipping")
			continue
		}
		run.Fetched++

		c := comic.FromRemote(remote)
		if err := c.Validate(); err != nil {
			metrics.RecordComic(metrics.OutcomeFailed)
			return stored, fmt.Errorf("comic %d: %w", id, err)
		}

		rawJSON, _ := json.Marshal(remote)
		if err := s.comics.Save(ctx, &c, rawJSON); err != nil {
			metrics.RecordComic(metrics.OutcomeFailed)
			return stored, fmt.Errorf("store comic %d: %w", id, err)
		}
		run.Stored++
		metrics.RecordComic(metrics.OutcomeStored)
		stored = append(stored, c)

		if run.ID != "" {
			if lerr := s.runs.LinkComicToRun(ctx, run.ID, c.ID); lerr != nil {
				log.Warn().Err(lerr).Str("run_id", run.ID).Int64("comic_id", c.ID).Msg("enrichment: link comic to run")
			}
		}
	}
	return stored, nil
}

// Update enriches the requested comics and then attaches the stored ones to
// the person.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (result UpdateResult, err error) {
	run := &Run{
		PersonID:  req.PersonID,
		Requested: len(req.ComicIDs),
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	s.startRun(ctx, run)
	defer func() { s.finishRun(ctx, run, err) }()

	stored, err := s.enrich(ctx, req.ComicIDs, run)
	result = UpdateResult{RunID: run.ID, Comics: stored}
	if err != nil {
		return result, err
	}

	ids := make([]int64, len(stored))
	for i, c := range stored {
		ids[i] = c.ID
	}
	if len(ids) == 0 {
		return result, nil
	}
	if err := s.people.AttachComics(ctx, req.PersonID, ids); err != nil {
		return result, err
	}
	return result, nil
}

// GetRun returns one run record.
func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.runs.FindRun(ctx, id)
}

func (s *Service) startRun(ctx context.Context, run *Run) {
	id, err := s.runs.CreateRun(ctx, run)
	if err != nil {
		log.Warn().Err(err).Int64("person_id", run.PersonID).Msg("enrichment: create run")
		return
	}
	run.ID = id
}

func (s *Service) finishRun(ctx context.Context, run *Run, err error) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		log.Error().Err(err).Str("run_id", run.ID).Int64("person_id", run.PersonID).Msg("enrichment: update failed")
	}
	if run.ID == "" {
		return
	}
	// The request may already be cancelled; the run record still gets closed.
	if uerr := s.runs.UpdateRun(context.WithoutCancel(ctx), run); uerr != nil {
		log.Warn().Err(uerr).Str("run_id", run.ID).Msg("enrichment: update run")
	}
}
