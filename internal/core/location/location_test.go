package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
)

var box = domain.BoundingBox{South: 10.31, North: 10.32, West: 123.91, East: 123.925}

func newSim(t *testing.T) *Simulated {
	t.Helper()
	sim, err := NewSimulated(box, domain.Coordinate{Latitude: 10.315, Longitude: 123.9175}, 0, nil)
	require.NoError(t, err)
	return sim
}

type recorder struct {
	mu    sync.Mutex
	fixes []Fix
}

func (r *recorder) add(f Fix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = append(r.fixes, f)
}

func (r *recorder) all() []Fix {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fix(nil), r.fixes...)
}

// --- Fake PositionProvider ---

type fakeProvider struct {
	mu         sync.Mutex
	current    ports.PositionFix
	currentErr error
	watchErr   error
	onFix      func(ports.PositionFix)
	onError    func(error)
	stops      int
}

func (p *fakeProvider) CurrentPosition(ctx context.Context) (ports.PositionFix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.currentErr
}

func (p *fakeProvider) WatchPosition(ctx context.Context, onFix func(ports.PositionFix), onError func(error)) (func() error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	p.onFix, p.onError = onFix, onError
	return func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.stops++
		p.onFix, p.onError = nil, nil
		return nil
	}, nil
}

func (p *fakeProvider) emit(c domain.Coordinate) {
	p.mu.Lock()
	fn := p.onFix
	p.mu.Unlock()
	if fn != nil {
		fn(ports.PositionFix{Coordinate: c, Time: time.Now()})
	}
}

func (p *fakeProvider) fail(err error) {
	p.mu.Lock()
	fn := p.onError
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (p *fakeProvider) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

// blockingProvider answers one-shot reads only when ctx ends, like an
// unresponsive device behind a request/reply timeout.
type blockingProvider struct {
	entered chan struct{}
}

func (p *blockingProvider) CurrentPosition(ctx context.Context) (ports.PositionFix, error) {
	close(p.entered)
	<-ctx.Done()
	return ports.PositionFix{}, ctx.Err()
}

func (p *blockingProvider) WatchPosition(ctx context.Context, onFix func(ports.PositionFix), onError func(error)) (func() error, error) {
	return func() error { return nil }, nil
}

// --- Simulated ---

func TestSimulated_MoveSteps(t *testing.T) {
	sim := newSim(t)
	start, _ := sim.Current(context.Background())

	got, err := sim.Move(domain.North)
	require.NoError(t, err)
	assert.InDelta(t, start.Latitude+DefaultStep, got.Latitude, 1e-12)
	assert.Equal(t, start.Longitude, got.Longitude)

	got, err = sim.Move(domain.SouthWest)
	require.NoError(t, err)
	assert.InDelta(t, start.Latitude, got.Latitude, 1e-12)
	assert.InDelta(t, start.Longitude-DefaultStep, got.Longitude, 1e-12)
}

func TestSimulated_InverseMovesCancel(t *testing.T) {
	pairs := [][2]domain.Direction{
		{domain.North, domain.South},
		{domain.East, domain.West},
		{domain.NorthEast, domain.SouthWest},
		{domain.NorthWest, domain.SouthEast},
	}
	for _, p := range pairs {
		sim := newSim(t)
		start, _ := sim.Current(context.Background())
		_, err := sim.Move(p[0])
		require.NoError(t, err)
		end, err := sim.Move(p[1])
		require.NoError(t, err)
		assert.InDelta(t, start.Latitude, end.Latitude, 1e-12, "%s then %s", p[0], p[1])
		assert.InDelta(t, start.Longitude, end.Longitude, 1e-12, "%s then %s", p[0], p[1])
	}
}

func TestSimulated_ClampsToBox(t *testing.T) {
	sim := newSim(t)
	for i := 0; i < 100; i++ {
		_, err := sim.Move(domain.NorthEast)
		require.NoError(t, err)
	}
	cur, _ := sim.Current(context.Background())
	assert.Equal(t, domain.Coordinate{Latitude: box.North, Longitude: box.East}, cur)
	assert.True(t, box.Contains(cur))
}

func TestSimulated_Center(t *testing.T) {
	sim := newSim(t)
	_, _ = sim.Move(domain.West)
	got, err := sim.Move(domain.Center)
	require.NoError(t, err)
	assert.Equal(t, box.Center(), got)
}

func TestSimulated_InvalidDirection(t *testing.T) {
	sim := newSim(t)
	_, err := sim.Move(domain.Direction("up-left"))
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)
}

func TestSimulated_StartOutsideBoxIsClamped(t *testing.T) {
	sim, err := NewSimulated(box, domain.Coordinate{Latitude: 0, Longitude: 0}, 0.001, nil)
	require.NoError(t, err)
	cur, _ := sim.Current(context.Background())
	assert.True(t, box.Contains(cur))
	assert.Equal(t, 0.001, sim.Step())
}

func TestSimulated_RejectsInvalidBox(t *testing.T) {
	_, err := NewSimulated(domain.BoundingBox{South: 1, North: 0, West: 0, East: 1}, domain.Coordinate{}, 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidBoundingBox)
}

func TestSimulated_SetBoundingBoxReclamps(t *testing.T) {
	sim := newSim(t)
	smaller := domain.BoundingBox{South: 10.316, North: 10.318, West: 123.918, East: 123.92}
	require.NoError(t, sim.SetBoundingBox(smaller))
	cur, _ := sim.Current(context.Background())
	assert.True(t, smaller.Contains(cur))
}

func TestSimulated_WatchDeliversCurrentThenMoves(t *testing.T) {
	sim := newSim(t)
	rec := &recorder{}

	sub, err := sim.Watch(context.Background(), rec.add)
	require.NoError(t, err)
	require.Len(t, rec.all(), 1)

	_, _ = sim.Move(domain.North)
	_, _ = sim.Move(domain.East)
	fixes := rec.all()
	require.Len(t, fixes, 3)
	assert.Greater(t, fixes[1].Coordinate.Latitude, fixes[0].Coordinate.Latitude)
	assert.Greater(t, fixes[2].Coordinate.Longitude, fixes[1].Coordinate.Longitude)

	require.NoError(t, sub.Stop())
	require.NoError(t, sub.Stop())
	_, _ = sim.Move(domain.South)
	assert.Len(t, rec.all(), 3, "no deliveries after Stop")
	assert.Equal(t, 0, sim.Watchers())
}

func TestSimulated_WatchStopsWithContext(t *testing.T) {
	sim := newSim(t)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := sim.Watch(ctx, func(Fix) {})
	require.NoError(t, err)
	require.Equal(t, 1, sim.Watchers())

	cancel()
	assert.Eventually(t, func() bool { return sim.Watchers() == 0 }, time.Second, 5*time.Millisecond)
}

// --- Live ---

func TestLive_Current(t *testing.T) {
	p := &fakeProvider{current: ports.PositionFix{Coordinate: domain.Coordinate{Latitude: 10.3, Longitude: 123.9}}}
	live := NewLive(p, nil)

	c, err := live.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.3, c.Latitude)

	p.currentErr = errors.New("permission denied")
	_, err = live.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
}

func TestLive_NoProvider(t *testing.T) {
	live := NewLive(nil, nil)
	_, err := live.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
	_, err = live.Watch(context.Background(), func(Fix) {})
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
}

func TestLive_WatchForwardsInOrder(t *testing.T) {
	p := &fakeProvider{}
	live := NewLive(p, nil)
	rec := &recorder{}

	sub, err := live.Watch(context.Background(), rec.add)
	require.NoError(t, err)

	p.emit(domain.Coordinate{Latitude: 1, Longitude: 1})
	p.fail(errors.New("signal lost"))
	p.emit(domain.Coordinate{Latitude: 2, Longitude: 2})
	p.emit(domain.Coordinate{Latitude: 200, Longitude: 2})

	fixes := rec.all()
	require.Len(t, fixes, 4)
	assert.True(t, fixes[0].OK())
	assert.ErrorIs(t, fixes[1].Err, domain.ErrLocationUnavailable)
	assert.Equal(t, 2.0, fixes[2].Coordinate.Latitude)
	assert.ErrorIs(t, fixes[3].Err, domain.ErrLocationUnavailable)

	require.NoError(t, sub.Stop())
	require.NoError(t, sub.Stop())
	assert.Equal(t, 1, p.stopCount())
}

func TestLive_WatchRefused(t *testing.T) {
	p := &fakeProvider{watchErr: errors.New("denied")}
	_, err := NewLive(p, nil).Watch(context.Background(), func(Fix) {})
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
}

// --- Manager ---

func TestManager_StartsSimulated(t *testing.T) {
	rec := &recorder{}
	m := NewManager(newSim(t), nil, rec.add, nil)
	require.NoError(t, m.Start(context.Background(), domain.ModeSimulated))
	assert.Equal(t, domain.ModeSimulated, m.Mode())
	assert.Len(t, rec.all(), 1)

	_, err := m.Move(domain.North)
	require.NoError(t, err)
	assert.Len(t, rec.all(), 2)
	require.NoError(t, m.Stop())
}

func TestManager_SwitchToLive(t *testing.T) {
	p := &fakeProvider{current: ports.PositionFix{Coordinate: domain.Coordinate{Latitude: 10.3, Longitude: 123.9}}}
	sim := newSim(t)
	rec := &recorder{}
	m := NewManager(sim, NewLive(p, nil), rec.add, nil)
	require.NoError(t, m.Start(context.Background(), domain.ModeSimulated))

	require.NoError(t, m.SwitchMode(context.Background(), domain.ModeLive))
	assert.Equal(t, domain.ModeLive, m.Mode())
	assert.Equal(t, 0, sim.Watchers(), "simulated watch stopped before live starts")

	_, err := m.Move(domain.North)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)

	before := len(rec.all())
	p.emit(domain.Coordinate{Latitude: 10.301, Longitude: 123.901})
	assert.Len(t, rec.all(), before+1)

	require.NoError(t, m.SwitchMode(context.Background(), domain.ModeSimulated))
	assert.Equal(t, 1, p.stopCount())
	afterSwitch := len(rec.all())
	p.emit(domain.Coordinate{Latitude: 10.302, Longitude: 123.902})
	assert.Len(t, rec.all(), afterSwitch, "live fixes after switching back are dropped")
}

func TestManager_LiveUnavailableFallsBack(t *testing.T) {
	p := &fakeProvider{currentErr: errors.New("permission denied")}
	sim := newSim(t)
	m := NewManager(sim, NewLive(p, nil), func(Fix) {}, nil)
	require.NoError(t, m.Start(context.Background(), domain.ModeSimulated))

	err := m.SwitchMode(context.Background(), domain.ModeLive)
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
	assert.Equal(t, domain.ModeSimulated, m.Mode())
	assert.Equal(t, 1, sim.Watchers())

	_, err = m.Move(domain.East)
	assert.NoError(t, err)
}

func TestManager_SlowLiveReadDoesNotBlockReaders(t *testing.T) {
	p := &blockingProvider{entered: make(chan struct{})}
	sim := newSim(t)
	rec := &recorder{}
	m := NewManager(sim, NewLive(p, nil), rec.add, nil)
	require.NoError(t, m.Start(context.Background(), domain.ModeSimulated))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	switched := make(chan error, 1)
	go func() { switched <- m.SwitchMode(ctx, domain.ModeLive) }()
	<-p.entered

	read := make(chan domain.LocationSourceMode, 1)
	go func() { read <- m.Mode() }()
	select {
	case mode := <-read:
		assert.Equal(t, domain.ModeSimulated, mode)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Mode() blocked while the live reading was pending")
	}

	_, err := m.Move(domain.North)
	require.NoError(t, err)
	assert.Equal(t, 1, sim.Watchers(), "simulated watch stays active during the reading")
	assert.Len(t, rec.all(), 2)

	cancel()
	assert.ErrorIs(t, <-switched, domain.ErrLocationUnavailable)
	assert.Equal(t, domain.ModeSimulated, m.Mode())
	assert.Equal(t, 1, sim.Watchers())
}

func TestManager_SwitchSameModeIsNoop(t *testing.T) {
	rec := &recorder{}
	sim := newSim(t)
	m := NewManager(sim, nil, rec.add, nil)
	require.NoError(t, m.Start(context.Background(), domain.ModeSimulated))
	require.NoError(t, m.SwitchMode(context.Background(), domain.ModeSimulated))
	assert.Len(t, rec.all(), 1, "no replay on redundant switch")
	assert.Equal(t, 1, sim.Watchers())
}

func TestManager_InvalidMode(t *testing.T) {
	m := NewManager(newSim(t), nil, nil, nil)
	err := m.SwitchMode(context.Background(), domain.LocationSourceMode("gps"))
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}
