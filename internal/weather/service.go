package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the orchestrator's fetch state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Result is a successful fetch outcome. FromCache and Offline are distinct
// on purpose: a fresh cache hit is not an outage, while Offline means every
// live source failed and a stale entry saved the day.
type Result struct {
	Snapshot  *Snapshot `json:"snapshot"`
	FromCache bool      `json:"fromCache"`
	Offline   bool      `json:"offline"`
}

// Status is the externally visible fetch state.
type Status struct {
	State   State   `json:"state"`
	Result  *Result `json:"result,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Cache is the snapshot store the service reads through and writes back to.
type Cache interface {
	Get(key string) (*Snapshot, bool)
	GetStale(key string) (*Snapshot, bool)
	Put(key string, snap *Snapshot)
}

// Service coordinates the gateways, the normalizing sources they return,
// the freshness cache, and retry into one fetch operation with
// primary/fallback/cache degradation.
type Service struct {
	primary   Gateway
	fallback  Gateway
	cache     Cache
	locations map[string]Location
	ordered   []Location

	retry  RetryPolicy
	sleep  Sleeper
	now    func() time.Time
	logger *zap.Logger

	// seq versions fetch requests so a superseded in-flight fetch can never
	// overwrite the state committed by a newer one.
	seq atomic.Int64

	mu     sync.RWMutex
	status Status
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRetryPolicy overrides the primary-provider retry policy.
func WithRetryPolicy(p RetryPolicy) ServiceOption {
	return func(s *Service) { s.retry = p }
}

// WithSleeper injects the backoff wait, for tests.
func WithSleeper(sleep Sleeper) ServiceOption {
	return func(s *Service) { s.sleep = sleep }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs the orchestrator. All collaborators are passed in
// explicitly; the service holds references rather than reaching into shared
// state.
func NewService(primary, fallback Gateway, cache Cache, locations []Location, opts ...ServiceOption) *Service {
	s := &Service{
		primary:   primary,
		fallback:  fallback,
		cache:     cache,
		locations: make(map[string]Location, len(locations)),
		ordered:   locations,
		retry:     DefaultRetryPolicy(),
		sleep:     SleepWithContext,
		now:       time.Now,
		logger:    zap.NewNop(),
		status:    Status{State: StateIdle},
	}
	for _, loc := range locations {
		s.locations[loc.Key()] = loc
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locations returns the configured location set in load order.
func (s *Service) Locations() []Location {
	return s.ordered
}

// LocationByID looks up a configured location.
func (s *Service) LocationByID(id string) (Location, bool) {
	loc, ok := s.locations[id]
	return loc, ok
}

// Status returns the current fetch status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// FetchByID resolves a configured location and fetches weather for it.
func (s *Service) FetchByID(ctx context.Context, id string, forceRefresh bool) (*Result, error) {
	loc, ok := s.locations[id]
	if !ok {
		return nil, ErrUnknownLocation
	}
	return s.Fetch(ctx, loc, forceRefresh)
}

// Fetch retrieves weather for a location. Unless forced it serves a valid
// cache entry; otherwise it tries the primary provider under the retry
// policy, then the fallback once, then degrades to the last cached snapshot
// regardless of expiry. Cancellation propagates and never commits an Error
// state.
func (s *Service) Fetch(ctx context.Context, loc Location, forceRefresh bool) (*Result, error) {
	seq := s.seq.Inc()
	fetchID := uuid.NewString()
	log := s.logger.With(
		zap.String("fetchId", fetchID),
		zap.String("location", loc.Key()),
		zap.Bool("force", forceRefresh),
	)

	s.commit(seq, Status{State: StateLoading})

	if !forceRefresh {
		if snap, ok := s.cache.Get(loc.Key()); ok {
			log.Debug("serving valid cache entry")
			res := &Result{Snapshot: snap, FromCache: true}
			s.commit(seq, Status{State: StateSuccess, Result: res})
			return res, nil
		}
	}

	snap, primErr := s.fetchPrimary(ctx, loc)
	if primErr == nil {
		s.cache.Put(loc.Key(), snap)
		res := &Result{Snapshot: snap}
		s.commit(seq, Status{State: StateSuccess, Result: res})
		return res, nil
	}
	if errors.Is(primErr, context.Canceled) {
		return nil, primErr
	}
	if errors.Is(primErr, ErrNotModified) {
		if stale, ok := s.cache.GetStale(loc.Key()); ok {
			log.Debug("provider confirmed cached data still current")
			s.cache.Put(loc.Key(), stale)
			res := &Result{Snapshot: stale, FromCache: true}
			s.commit(seq, Status{State: StateSuccess, Result: res})
			return res, nil
		}
		// Marker known but cache cleared since; treat as a plain failure.
	}
	log.Warn("primary provider failed", zap.Error(primErr))

	// The fallback gets a single attempt, outside the retry policy.
	snap, fbErr := s.fetchFrom(ctx, s.fallback, loc)
	if fbErr == nil {
		s.cache.Put(loc.Key(), snap)
		res := &Result{Snapshot: snap}
		s.commit(seq, Status{State: StateSuccess, Result: res})
		return res, nil
	}
	if errors.Is(fbErr, context.Canceled) {
		return nil, fbErr
	}
	log.Warn("fallback provider failed", zap.Error(fbErr))

	if stale, ok := s.cache.GetStale(loc.Key()); ok {
		log.Info("serving stale cache entry after total provider failure")
		res := &Result{Snapshot: stale, FromCache: true, Offline: true}
		s.commit(seq, Status{State: StateSuccess, Result: res})
		return res, nil
	}

	ferr := pickClassified(primErr, fbErr)
	log.Error("fetch failed with no cached fallback", zap.Error(ferr))
	s.commit(seq, Status{State: StateError, Message: ferr.Message()})
	return nil, ferr
}

// fetchPrimary runs the primary gateway under the retry policy.
func (s *Service) fetchPrimary(ctx context.Context, loc Location) (*Snapshot, error) {
	var snap *Snapshot
	err := s.retry.Execute(ctx, s.sleep, func() error {
		var ferr error
		snap, ferr = s.fetchFrom(ctx, s.primary, loc)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// fetchFrom issues one gateway call and normalizes the result.
func (s *Service) fetchFrom(ctx context.Context, gw Gateway, loc Location) (*Snapshot, error) {
	src, err := gw.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	snap, err := src.Normalize(loc, s.now())
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// commit installs a new status only if this fetch has not been superseded.
func (s *Service) commit(seq int64, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Load() != seq {
		return false
	}
	s.status = status
	return true
}

// pickClassified combines both provider failures into one typed error for
// the caller, preferring the primary's classification.
func pickClassified(primErr, fbErr error) *FetchError {
	combined := multierr.Combine(primErr, fbErr)

	var fe *FetchError
	if errors.As(primErr, &fe) || errors.As(fbErr, &fe) {
		return &FetchError{
			Kind:     fe.Kind,
			Status:   fe.Status,
			Provider: fe.Provider,
			Err:      combined,
		}
	}
	return &FetchError{Kind: KindUnknown, Provider: "weather", Err: combined}
}
