package orgwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/orgwatch/internal/notify"
	"github.com/hazyhaar/orgwatch/internal/snapshot"
	"github.com/hazyhaar/orgwatch/internal/source"
	"github.com/hazyhaar/orgwatch/internal/store"
)

// Service is the poll cycle coordinator. It owns one source per configured
// provider×organization pair, a snapshot store, and a notification sink.
// Create one per orgwatch instance; methods are not safe for concurrent use.
type Service struct {
	config   *Config
	store    store.Store
	notifier notify.Notifier
	sources  []source.Source
	logger   *slog.Logger
	newID    func() string

	// probed guards the one-time bootstrap detection; bootstrap suppresses
	// the first cycle's notification and then flips permanently to false.
	probed    bool
	bootstrap bool
}

// New creates a Service. Collaborators are built from cfg unless an option
// supplies them.
func New(cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		config: cfg,
		logger: logger,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}

	// Apply options before the config-driven wiring so injected
	// collaborators win.
	for _, opt := range opts {
		opt(svc)
	}

	if svc.sources == nil {
		for _, org := range cfg.GitHub.Orgs {
			svc.sources = append(svc.sources, source.NewGitHub(org, source.Config{
				BaseURL: cfg.GitHub.APIBase,
				Token:   cfg.GitHub.Token,
				Timeout: cfg.FetchTimeout,
				Logger:  logger,
			}))
		}
		for _, org := range cfg.Hub.Orgs {
			svc.sources = append(svc.sources, source.NewHub(org, source.Config{
				BaseURL: cfg.Hub.APIBase,
				Timeout: cfg.FetchTimeout,
				Logger:  logger,
			}))
		}
	}
	if len(svc.sources) == 0 {
		return nil, fmt.Errorf("orgwatch: no organizations to watch")
	}

	if svc.store == nil {
		var err error
		switch cfg.Store.Backend {
		case "", "file":
			svc.store, err = store.NewFile(cfg.Store.Dir)
		case "sqlite":
			svc.store, err = store.NewSQLite(cfg.Store.Path)
		default:
			err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
		}
		if err != nil {
			return nil, fmt.Errorf("orgwatch: open store: %w", err)
		}
	}

	if svc.notifier == nil {
		switch cfg.Notify.Sink {
		case "", "stdout":
			svc.notifier = notify.NewStdout(nil)
		case "webhook":
			if cfg.Notify.WebhookURL == "" {
				return nil, fmt.Errorf("orgwatch: webhook sink needs notify.webhook_url or WECHAT_WEBHOOK_URL")
			}
			svc.notifier = notify.NewWebhook(cfg.Notify.WebhookURL, notify.WithLogger(logger))
		default:
			return nil, fmt.Errorf("orgwatch: unknown notify sink %q", cfg.Notify.Sink)
		}
	}

	return svc, nil
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithStore overrides the snapshot store built from configuration.
func WithStore(st Store) ServiceOption {
	return func(svc *Service) { svc.store = st }
}

// WithNotifier overrides the notification sink built from configuration.
func WithNotifier(n Notifier) ServiceOption {
	return func(svc *Service) { svc.notifier = n }
}

// WithSources replaces the provider adapters built from configuration.
// Use in tests to feed the coordinator canned listings.
func WithSources(srcs ...Source) ServiceOption {
	return func(svc *Service) { svc.sources = srcs }
}

// Run executes poll cycles at the configured cadence until ctx is cancelled.
// The first cycle starts immediately. Cadence is start-to-start: a cycle that
// overruns the interval is followed by the pending one at once, and intervals
// skipped entirely while it ran are dropped, not queued.
func (s *Service) Run(ctx context.Context) error {
	s.detectMode(ctx)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.logger.Info("orgwatch: started",
		"pairs", len(s.sources), "interval", s.config.CheckInterval, "bootstrap", s.bootstrap)
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("orgwatch: stopping")
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// RunOnce executes a single poll cycle and returns. Used by the -once flag
// and cron-style deployments.
func (s *Service) RunOnce(ctx context.Context) {
	s.detectMode(ctx)
	s.cycle(ctx)
}

// Close releases the store and the notification sink.
func (s *Service) Close() error {
	s.notifier.Close()
	err := s.store.Close()
	s.logger.Info("orgwatch: closed")
	return err
}

// detectMode probes the store once to decide whether this process starts in
// bootstrap mode. Bootstrap holds only when no pair has a stored snapshot.
func (s *Service) detectMode(ctx context.Context) {
	if s.probed {
		return
	}
	s.probed = true
	for _, src := range s.sources {
		snap, err := s.store.Load(ctx, src.Provider(), src.Org())
		if err != nil {
			// Unreadable counts as absent; checkPair rebuilds it.
			s.logger.Warn("orgwatch: snapshot probe failed",
				"provider", src.Provider(), "org", src.Org(), "error", err)
			continue
		}
		if snap != nil {
			return
		}
	}
	s.bootstrap = true
	s.logger.Info("orgwatch: first run detected")
}

// cycle runs one guarded poll cycle. A panic in provider or store code is
// contained here so the ticker loop survives it.
func (s *Service) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("orgwatch: cycle panic", "panic", r)
		}
	}()
	s.runCycle(ctx)
}

func (s *Service) runCycle(ctx context.Context) {
	// Shutdown must not abandon a half-persisted cycle: the cycle finishes
	// on a detached context, bounded by per-request client timeouts.
	cycleCtx := context.WithoutCancel(ctx)

	start := time.Now()
	logger := s.logger.With("cycle", s.newID())
	logger.Info("orgwatch: cycle start", "bootstrap", s.bootstrap)

	sets := make([]snapshot.ChangeSet, 0, len(s.sources))
	for _, src := range s.sources {
		sets = append(sets, s.checkPair(cycleCtx, logger, src))
	}
	report := snapshot.Merge(sets...)

	if s.bootstrap {
		s.bootstrap = false
		logger.Info("orgwatch: baseline established", "pairs", len(s.sources))
	} else if !report.Empty() {
		// Snapshots are already persisted: a lost notification is never
		// re-sent, a crash here never replays changes.
		if err := s.notifier.Notify(cycleCtx, report); err != nil {
			logger.Error("orgwatch: send notification", "error", err)
		}
	}

	logger.Info("orgwatch: cycle complete",
		"changes", report.Count(), "elapsed", time.Since(start).Round(time.Millisecond))
}

// checkPair fetches one provider×organization listing, diffs it against the
// stored snapshot, and persists the fresh listing. Fetch failures skip the
// pair and leave the stored snapshot untouched, so the missed delta surfaces
// on the next successful cycle.
func (s *Service) checkPair(ctx context.Context, logger *slog.Logger, src source.Source) snapshot.ChangeSet {
	provider, org := src.Provider(), src.Org()

	cur, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			logger.Warn("orgwatch: rate limited, pair skipped", "provider", provider, "org", org, "error", err)
		} else {
			logger.Warn("orgwatch: fetch failed, pair skipped", "provider", provider, "org", org, "error", err)
		}
		return snapshot.ChangeSet{}
	}

	prev, err := s.store.Load(ctx, provider, org)
	if err != nil {
		// A corrupt snapshot cannot be diffed against. Treat the pair as
		// unseen: the fresh listing replaces it and rebuilds the baseline.
		logger.Warn("orgwatch: stored snapshot unreadable, baseline rebuilt",
			"provider", provider, "org", org, "error", err)
		prev = nil
	}

	changes := snapshot.Diff(prev, cur)

	if err := s.store.Save(ctx, cur); err != nil {
		logger.Error("orgwatch: save snapshot", "provider", provider, "org", org, "error", err)
	}

	switch provider {
	case snapshot.ProviderGitHub:
		logger.Info("github: check complete", "org", org, "repos", len(cur.Repos),
			"new", len(changes.NewRepos), "updated", len(changes.UpdatedRepos))
	case snapshot.ProviderHuggingFace:
		logger.Info("hub: check complete", "org", org,
			"models", len(cur.Models), "datasets", len(cur.Datasets),
			"new", len(changes.NewModels)+len(changes.NewDatasets),
			"updated", len(changes.UpdatedModels)+len(changes.UpdatedDatasets))
	}
	return changes
}
