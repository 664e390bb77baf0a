package scraper

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wvdl/internal/downloader"
	"wvdl/pkg/config"
	"wvdl/pkg/logger"
	"wvdl/pkg/storage"
	"wvdl/pkg/ui"
	"wvdl/pkg/weverse"
)

// Scraper orchestrates one download run over every configured artist
type Scraper struct {
	client   WeverseClient
	config   *config.Config
	gate     *ui.PromptGate
	reporter *ui.Reporter
	tracker  *ui.StatusTracker
	store    *storage.Manager
	logger   logger.Logger
}

// New creates a new Scraper. Status lines go to reporter and password
// prompts through gate, which must be the gate reporter prints under.
func New(cfg *config.Config, client WeverseClient, gate *ui.PromptGate, reporter *ui.Reporter, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client:   client,
		config:   cfg,
		gate:     gate,
		reporter: reporter,
		tracker:  ui.NewStatusTracker(),
		store:    storage.NewManager(log),
		logger:   log,
	}
}

// Tracker returns the run's outcome counters
func (s *Scraper) Tracker() *ui.StatusTracker {
	return s.tracker
}

// feedJob is one (artist, feed) listing
type feedJob struct {
	artist string
	id     int64
	feed   weverse.Feed
	limit  *int
}

// Run resolves artists, lists every feed and downloads every listed post.
// Per-feed and per-post failures are reported and do not fail the run; the
// returned error is reserved for failing to resolve artists or cancellation.
func (s *Scraper) Run(ctx context.Context) error {
	workers := s.config.MaxConnections
	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"artists": len(s.config.Artists),
		"workers": workers,
	})

	s.logger.Info("getting artist ids")
	artists, err := ResolveArtists(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to resolve artists: %w", err)
	}

	s.logger.InfoWithFields("artist ids resolved", map[string]interface{}{
		"communities": artists.Len(),
	})

	fetcher := downloader.NewFetcher(s.client, s.gate, s.logger)
	processor := downloader.NewProcessor(s.config.Artists, s.client, fetcher, s.store, s.logger)
	pool := downloader.NewWorkerPool(workers, processor, fetcher, s.logger)
	pool.Start(ctx)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for result := range pool.Results() {
			s.handleResult(result)
		}
	}()

	s.logger.Info("listing posts")
	var g errgroup.Group
	g.SetLimit(workers)
	for _, job := range s.feedJobs(artists) {
		job := job
		g.Go(func() error {
			return s.listFeed(ctx, pool, job)
		})
	}
	// each failure was already reported; Wait only surfaces the first
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Warn("not every feed was listed")
	}

	waitErr := pool.Wait(ctx)
	pool.Stop()
	<-drained

	reason := "completed"
	if waitErr != nil {
		reason = waitErr.Error()
	}
	logger.LogComponentStop(s.logger, "scraper", reason)
	logger.LogMetrics(s.logger, "download", s.tracker.Metrics())
	return waitErr
}

// feedJobs expands the configured artists into feed listings. Artists that
// are not in the directory are reported here and contribute nothing.
func (s *Scraper) feedJobs(artists *ArtistDirectory) []feedJob {
	var jobs []feedJob
	for _, name := range s.config.ArtistNames() {
		id, err := artists.Lookup(name)
		if err != nil {
			s.reporter.Failed(err)
			s.tracker.IncrementFailed()
			continue
		}
		ac := s.config.Artists[name]
		jobs = append(jobs,
			feedJob{artist: name, id: id, feed: weverse.FeedArtist, limit: ac.RecentArtist},
			feedJob{artist: name, id: id, feed: weverse.FeedMoments, limit: ac.RecentMoments},
		)
	}
	return jobs
}

// listFeed lists one feed and submits its posts. Failures are reported
// before they are returned.
func (s *Scraper) listFeed(ctx context.Context, pool *downloader.WorkerPool, job feedJob) error {
	log := s.logger.WithFields(map[string]interface{}{
		"artist": job.artist,
		"feed":   job.feed.String(),
	})

	posts, err := NewPaginator(s.client, log).Paginate(ctx, job.id, job.feed, job.limit)
	if err != nil {
		err = fmt.Errorf("failed to list %s %s feed: %w", job.artist, job.feed, err)
		s.reporter.Failed(err)
		s.tracker.IncrementFailed()
		return err
	}

	for _, post := range posts {
		if err := pool.Submit(post); err != nil {
			log.WithError(err).Warn("dropping post")
			return err
		}
	}
	return nil
}

func (s *Scraper) handleResult(r downloader.Result) {
	url := s.client.Endpoints().WebURL(r.Post)

	if r.Error != nil {
		s.reporter.Failed(r.Error)
		if r.Requeued {
			s.tracker.IncrementRetried()
		} else {
			s.tracker.IncrementFailed()
		}
		return
	}

	switch r.Outcome.Status {
	case downloader.StatusDownloaded:
		s.reporter.Downloaded(url)
		s.tracker.IncrementDownloaded()
	case downloader.StatusSkipped:
		s.reporter.Skipped(url)
		s.tracker.IncrementSkipped()
	}
}
