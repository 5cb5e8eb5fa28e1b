package history

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

const (
	defaultQueueSize = 256
	pruneInterval    = 24 * time.Hour
	writeTimeout     = 5 * time.Second
	hoursPerDay      = 24
)

// Houses is the view of the house registry the historian needs.
type Houses interface {
	Names() []string
	Get(name string) (*house.Store, bool)
}

// Logger is the logging interface used by the Historian.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config configures a Historian.
type Config struct {
	Interval      time.Duration
	RetentionDays int
	QueueSize     int
}

// Historian snapshots houses periodically and persists event lines.
//
// It implements house.Observer. OnCommit never blocks: when the queue
// is full the commit's lines are dropped and counted.
type Historian struct {
	repo   Repository
	houses Houses
	cfg    Config
	logger Logger
	now    func() time.Time

	queue chan house.Commit

	mu      sync.Mutex
	dropped int
}

// NewHistorian creates a historian. Run must be called to start it.
func NewHistorian(repo Repository, houses Houses, cfg Config, logger Logger) *Historian {
	if logger == nil {
		logger = noopLogger{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Historian{
		repo:   repo,
		houses: houses,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		queue:  make(chan house.Commit, cfg.QueueSize),
	}
}

// OnCommit queues the commit's event lines for persistence.
func (h *Historian) OnCommit(c house.Commit) {
	if len(c.Lines) == 0 {
		return
	}
	select {
	case h.queue <- c:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
		h.logger.Warn("history queue full, dropping event lines", "house", c.House, "lines", len(c.Lines))
	}
}

// Dropped returns how many commits were dropped because the queue was full.
func (h *Historian) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Run processes the queue and takes snapshots until ctx is cancelled.
// Queued events are flushed before it returns.
func (h *Historian) Run(ctx context.Context) {
	var snapshotC <-chan time.Time
	if h.cfg.Interval > 0 {
		ticker := time.NewTicker(h.cfg.Interval)
		defer ticker.Stop()
		snapshotC = ticker.C
	}
	pruneTicker := time.NewTicker(pruneInterval)
	defer pruneTicker.Stop()

	h.logger.Info("historian started", "interval", h.cfg.Interval, "retention_days", h.cfg.RetentionDays)

	for {
		select {
		case <-ctx.Done():
			h.drain()
			h.logger.Info("historian stopped")
			return
		case c := <-h.queue:
			h.record(c)
		case <-snapshotC:
			h.SnapshotAll(ctx)
		case <-pruneTicker.C:
			h.prune(ctx)
		}
	}
}

// SnapshotAll stores one snapshot per open house.
func (h *Historian) SnapshotAll(ctx context.Context) int {
	at := h.now()
	saved := 0
	for _, name := range h.houses.Names() {
		st, ok := h.houses.Get(name)
		if !ok {
			continue
		}
		if _, err := h.repo.SaveSnapshot(ctx, st.GetState(), at); err != nil {
			h.logger.Error("saving snapshot failed", "house", name, "error", err)
			continue
		}
		saved++
	}
	h.logger.Debug("snapshots saved", "count", saved)
	return saved
}

func (h *Historian) record(c house.Commit) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := h.repo.RecordEvents(ctx, c); err != nil {
		h.logger.Error("recording events failed", "house", c.House, "error", err)
	}
}

// drain writes whatever is queued without waiting for more.
func (h *Historian) drain() {
	for {
		select {
		case c := <-h.queue:
			h.record(c)
		default:
			return
		}
	}
}

func (h *Historian) prune(ctx context.Context) {
	if h.cfg.RetentionDays <= 0 {
		return
	}
	n, err := h.repo.Prune(ctx, time.Duration(h.cfg.RetentionDays)*hoursPerDay*time.Hour)
	if err != nil {
		h.logger.Error("pruning history failed", "error", err)
		return
	}
	if n > 0 {
		h.logger.Info("history pruned", "rows", n)
	}
}
