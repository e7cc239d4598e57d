package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"essaim/app/cfg"
	"essaim/app/database"
)

// ErrScanInProgress is returned when a scan cycle is requested while another
// one is still running. Overlapping cycles are skipped, not queued.
var ErrScanInProgress = errors.New("a scan is already in progress")

// startupDelay gives the HTTP server a moment to come up before the first
// full scan hits upstream providers.
const startupDelay = 5 * time.Second

// CampaignScanner scans one campaign and reports how many opportunities it
// stored.
type CampaignScanner interface {
	Run(ctx context.Context, campaign database.Campaign) (int, error)
}

// Scheduler drives scans: once shortly after startup, on a fixed interval,
// and on demand. All cycles funnel through the in-flight guard so scans never
// overlap; campaigns within a cycle run strictly sequentially.
type Scheduler struct {
	scanner      CampaignScanner
	campaignRepo database.CampaignRepository
	interval     time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	running      sync.Mutex
}

func NewScheduler(scanner CampaignScanner, campaignRepo database.CampaignRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	interval := time.Duration(c.ScanInterval) * time.Minute
	if interval <= 0 {
		slog.Warn("Invalid scan interval, falling back to 1 minute", "minutes", c.ScanInterval)
		interval = time.Minute
	}

	return &Scheduler{
		scanner:      scanner,
		campaignRepo: campaignRepo,
		interval:     interval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(startupDelay):
		}

		if _, err := s.ScanAll(s.ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
			slog.Error("Startup scan failed", "error", err)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				_, err := s.ScanAll(s.ctx)
				switch {
				case errors.Is(err, ErrScanInProgress):
					slog.Warn("Previous scan still running, skipping cycle")
				case err != nil:
					slog.Error("Scheduled scan failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the interval loop and waits for in-flight work to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// ScanAll runs one full cycle over all active campaigns and returns the total
// number of new opportunities. A failing campaign is logged and skipped; it
// never aborts the remaining campaigns.
func (s *Scheduler) ScanAll(ctx context.Context) (int, error) {
	if !s.running.TryLock() {
		return 0, ErrScanInProgress
	}
	defer s.running.Unlock()

	campaigns, err := s.campaignRepo.ListActiveCampaigns()
	if err != nil {
		return 0, fmt.Errorf("failed to list active campaigns: %w", err)
	}

	runID := uuid.NewString()[:8]
	slog.Info("Scan cycle started", "run", runID, "campaigns", len(campaigns))

	total := 0
	for _, campaign := range campaigns {
		n, err := s.scanner.Run(ctx, campaign)
		if err != nil {
			slog.Error("Campaign scan failed", "run", runID, "campaign", campaign.BrandName, "error", err)
			continue
		}
		total += n
	}

	slog.Info("Scan cycle completed", "run", runID, "new", total)

	return total, nil
}

// ScanCampaign scans a single campaign in the background. Used when a new
// campaign is created so its first results appear without waiting for the
// next cycle. Waits for a running cycle instead of skipping: a fresh
// campaign should not lose its first scan.
func (s *Scheduler) ScanCampaign(campaign database.Campaign) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.running.Lock()
		defer s.running.Unlock()

		n, err := s.scanner.Run(s.ctx, campaign)
		if err != nil {
			slog.Error("Campaign scan failed", "campaign", campaign.BrandName, "error", err)
			return
		}
		slog.Info("Campaign scan finished", "campaign", campaign.BrandName, "new", n)
	}()
}
