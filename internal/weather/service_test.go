package weather_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunatech/sila/internal/cache"
	"github.com/nunatech/sila/internal/weather"
)

var (
	nuuk     = weather.Location{ID: "nuuk", Name: "Nuuk", Region: "Sermersooq", Latitude: 64.1748, Longitude: -51.7381}
	sisimiut = weather.Location{ID: "sisimiut", Name: "Sisimiut", Region: "Qeqqata", Latitude: 66.9395, Longitude: -53.6735}
)

// staticSource returns a fixed snapshot for whatever location is asked.
type staticSource struct {
	provider string
	tempC    float64
}

func (s staticSource) Normalize(loc weather.Location, now time.Time) (*weather.Snapshot, error) {
	return &weather.Snapshot{
		Location:  loc,
		Current:   weather.Current{TemperatureC: s.tempC},
		Provider:  s.provider,
		FetchedAt: now,
	}, nil
}

// scriptedGateway runs a per-call script and counts invocations.
type scriptedGateway struct {
	name string
	fn   func(call int) (weather.RawSource, error)

	mu    sync.Mutex
	calls int
}

func (g *scriptedGateway) Name() string { return g.name }

func (g *scriptedGateway) Fetch(ctx context.Context, loc weather.Location) (weather.RawSource, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	return g.fn(n)
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func alwaysOK(name string, tempC float64) *scriptedGateway {
	return &scriptedGateway{name: name, fn: func(int) (weather.RawSource, error) {
		return staticSource{provider: name, tempC: tempC}, nil
	}}
}

func alwaysFail(name string, err error) *scriptedGateway {
	return &scriptedGateway{name: name, fn: func(int) (weather.RawSource, error) {
		return nil, err
	}}
}

func httpError(provider string, status int) *weather.FetchError {
	return &weather.FetchError{
		Kind: weather.KindHTTP, Status: status, Provider: provider,
		Err: errors.New("status failure"),
	}
}

func netError(provider string) *weather.FetchError {
	return &weather.FetchError{
		Kind: weather.KindNetwork, Provider: provider,
		Err: errors.New("connection refused"),
	}
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newService(primary, fallback weather.Gateway, opts ...weather.ServiceOption) (*weather.Service, *cache.FreshnessCache) {
	snapshots := cache.New()
	opts = append([]weather.ServiceOption{weather.WithSleeper(noSleep)}, opts...)
	svc := weather.NewService(primary, fallback, snapshots, []weather.Location{nuuk, sisimiut}, opts...)
	return svc, snapshots
}

func TestFetchPrimarySuccessPopulatesCache(t *testing.T) {
	primary := alwaysOK("met", -7)
	fallback := alwaysOK("weatherapi", -6)
	svc, snapshots := newService(primary, fallback)

	res, err := svc.Fetch(context.Background(), nuuk, false)
	require.NoError(t, err)
	assert.Equal(t, "met", res.Snapshot.Provider)
	assert.False(t, res.FromCache)
	assert.False(t, res.Offline)
	assert.Equal(t, 0, fallback.callCount())
	assert.True(t, snapshots.IsValid("nuuk"))
	assert.Equal(t, weather.StateSuccess, svc.Status().State)
}

func TestFetchServesValidCacheUnlessForced(t *testing.T) {
	primary := alwaysOK("met", -7)
	svc, _ := newService(primary, alwaysOK("weatherapi", -6))

	_, err := svc.Fetch(context.Background(), nuuk, false)
	require.NoError(t, err)
	require.Equal(t, 1, primary.callCount())

	res, err := svc.Fetch(context.Background(), nuuk, false)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.False(t, res.Offline)
	assert.Equal(t, 1, primary.callCount(), "valid cache entry must avoid a provider call")

	_, err = svc.Fetch(context.Background(), nuuk, true)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.callCount(), "forced refresh must bypass the cache")
}

func TestFetchRetriesForbiddenThenFallsBack(t *testing.T) {
	var delays []time.Duration
	sleeper := func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	primary := alwaysFail("met", httpError("met", http.StatusForbidden))
	fallback := alwaysOK("weatherapi", -6)
	svc, _ := newService(primary, fallback, weather.WithSleeper(sleeper))

	res, err := svc.Fetch(context.Background(), nuuk, true)
	require.NoError(t, err)

	assert.Equal(t, 3, primary.callCount(), "403 must be retried up to 3 attempts")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
	assert.Equal(t, 1, fallback.callCount(), "fallback gets a single attempt")
	assert.Equal(t, "weatherapi", res.Snapshot.Provider)
	assert.False(t, res.Offline)
}

func TestFetchNonForbiddenFailureIsNotRetried(t *testing.T) {
	primary := alwaysFail("met", httpError("met", http.StatusInternalServerError))
	fallback := alwaysOK("weatherapi", -6)
	svc, _ := newService(primary, fallback)

	_, err := svc.Fetch(context.Background(), nuuk, true)
	require.NoError(t, err)
	assert.Equal(t, 1, primary.callCount())
}

func TestFetchFallsBackToStaleCacheWhenAllProvidersFail(t *testing.T) {
	svc, snapshots := newService(
		alwaysFail("met", netError("met")),
		alwaysFail("weatherapi", netError("weatherapi")),
	)
	snapshots.Put("nuuk", &weather.Snapshot{Location: nuuk, Provider: "met"})

	res, err := svc.Fetch(context.Background(), nuuk, true)
	require.NoError(t, err, "a cached entry must rescue a total provider failure")
	assert.True(t, res.FromCache)
	assert.True(t, res.Offline)
	assert.Equal(t, weather.StateSuccess, svc.Status().State)
}

func TestFetchFailsWithClassifiedErrorWhenNothingCached(t *testing.T) {
	svc, _ := newService(
		alwaysFail("met", netError("met")),
		alwaysFail("weatherapi", netError("weatherapi")),
	)

	_, err := svc.Fetch(context.Background(), nuuk, true)
	require.Error(t, err)

	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, weather.KindNetwork, fe.Kind)
	assert.Contains(t, fe.Message(), "connection")

	status := svc.Status()
	assert.Equal(t, weather.StateError, status.State)
	assert.NotEmpty(t, status.Message)
}

func TestFetchNotModifiedRefreshesCachedSnapshot(t *testing.T) {
	primary := alwaysFail("met", weather.ErrNotModified)
	fallback := alwaysOK("weatherapi", -6)
	svc, snapshots := newService(primary, fallback)

	cached := &weather.Snapshot{Location: nuuk, Provider: "met"}
	snapshots.Put("nuuk", cached)

	res, err := svc.Fetch(context.Background(), nuuk, true)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.False(t, res.Offline)
	assert.Same(t, cached, res.Snapshot)
	assert.Equal(t, 0, fallback.callCount())
}

func TestFetchByIDUnknownLocation(t *testing.T) {
	svc, _ := newService(alwaysOK("met", -7), alwaysOK("weatherapi", -6))

	_, err := svc.FetchByID(context.Background(), "atlantis", false)
	assert.ErrorIs(t, err, weather.ErrUnknownLocation)
}

func TestSupersededFetchDoesNotOverwriteState(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	// The first fetch blocks inside its backoff wait; the second completes
	// meanwhile and must own the final committed state.
	blockingSleeper := func(ctx context.Context, d time.Duration) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	}

	primary := alwaysFail("met", httpError("met", http.StatusForbidden))
	fallback := alwaysFail("weatherapi", netError("weatherapi"))
	svc, snapshots := newService(primary, fallback, weather.WithSleeper(blockingSleeper))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Fetch(context.Background(), nuuk, true)
	}()

	<-entered

	// The newer fetch completes instantly from cache.
	snapshots.Put("sisimiut", &weather.Snapshot{Location: sisimiut, Provider: "met"})
	res, err := svc.Fetch(context.Background(), sisimiut, false)
	require.NoError(t, err)
	assert.True(t, res.FromCache)

	statusAfterSecond := svc.Status()
	require.Equal(t, weather.StateSuccess, statusAfterSecond.State)
	require.Equal(t, "sisimiut", statusAfterSecond.Result.Snapshot.Location.ID)

	close(release)
	wg.Wait()

	// The first (superseded) fetch finished last, failed, and must not have
	// replaced the state committed by the second.
	assert.Equal(t, statusAfterSecond, svc.Status())
}
