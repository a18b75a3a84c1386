package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
)

// PositionSubject carries continuous fixes from the observer device of a viewport.
func PositionSubject(viewportID string) string {
	return "observer." + viewportID + ".position"
}

// LocateSubject answers one-shot position requests for a viewport.
func LocateSubject(viewportID string) string {
	return "observer." + viewportID + ".locate"
}

// FixMessage is the wire form of a device reading. A non-empty Error means the
// device could not produce a position.
type FixMessage struct {
	Lat   *float64  `json:"lat,omitempty"`
	Lon   *float64  `json:"lon,omitempty"`
	Time  time.Time `json:"time,omitzero"`
	Error string    `json:"error,omitempty"`
}

// EncodeFix serialises a reading.
func EncodeFix(c domain.Coordinate, at time.Time) ([]byte, error) {
	lat, lon := c.Latitude, c.Longitude
	return json.Marshal(FixMessage{Lat: &lat, Lon: &lon, Time: at.UTC()})
}

// EncodeFixError serialises a device failure.
func EncodeFixError(reason string) ([]byte, error) {
	return json.Marshal(FixMessage{Error: reason})
}

// DecodeFix parses a reading; device errors and malformed payloads return an error.
func DecodeFix(data []byte) (ports.PositionFix, error) {
	var msg FixMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ports.PositionFix{}, fmt.Errorf("decode fix: %w", err)
	}
	if msg.Error != "" {
		return ports.PositionFix{}, errors.New(msg.Error)
	}
	if msg.Lat == nil || msg.Lon == nil {
		return ports.PositionFix{}, errors.New("decode fix: missing lat/lon")
	}
	return ports.PositionFix{
		Coordinate: domain.Coordinate{Latitude: *msg.Lat, Longitude: *msg.Lon},
		Time:       msg.Time,
	}, nil
}

// PositionFeed implements ports.PositionProvider for one viewport over NATS.
type PositionFeed struct {
	conn       *nats.Conn
	viewportID string
	timeout    time.Duration
}

// NewPositionFeed builds a provider reading the subjects of viewportID.
func NewPositionFeed(conn *nats.Conn, viewportID string, timeout time.Duration) *PositionFeed {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PositionFeed{conn: conn, viewportID: viewportID, timeout: timeout}
}

// CurrentPosition asks the device for one reading via request/reply.
func (f *PositionFeed) CurrentPosition(ctx context.Context) (ports.PositionFix, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	msg, err := f.conn.RequestWithContext(ctx, LocateSubject(f.viewportID), nil)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return ports.PositionFix{}, fmt.Errorf("no device for viewport %s", f.viewportID)
		}
		return ports.PositionFix{}, fmt.Errorf("locate %s: %w", f.viewportID, err)
	}
	return DecodeFix(msg.Data)
}

// WatchPosition subscribes to the device's position subject. NATS delivers the
// messages of one subscription sequentially, so fixes keep device order.
func (f *PositionFeed) WatchPosition(ctx context.Context, onFix func(ports.PositionFix), onError func(error)) (func() error, error) {
	sub, err := f.conn.Subscribe(PositionSubject(f.viewportID), func(msg *nats.Msg) {
		fix, err := DecodeFix(msg.Data)
		if err != nil {
			onError(err)
			return
		}
		onFix(fix)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", PositionSubject(f.viewportID), err)
	}
	return sub.Unsubscribe, nil
}

// PositionFeeds hands out one PositionFeed per viewport on a shared connection.
type PositionFeeds struct {
	conn    *nats.Conn
	timeout time.Duration
}

func NewPositionFeeds(conn *nats.Conn, timeout time.Duration) *PositionFeeds {
	return &PositionFeeds{conn: conn, timeout: timeout}
}

// ForViewport implements usecases.PositionProviderFactory.
func (p *PositionFeeds) ForViewport(viewportID string) ports.PositionProvider {
	return NewPositionFeed(p.conn, viewportID, p.timeout)
}

// DevicePublisher plays the device side: it publishes fixes and answers locate requests.
type DevicePublisher struct {
	conn       *nats.Conn
	viewportID string
	sub        *nats.Subscription
}

// NewDevicePublisher answers locate requests with whatever current returns.
func NewDevicePublisher(conn *nats.Conn, viewportID string, current func() domain.Coordinate) (*DevicePublisher, error) {
	sub, err := conn.Subscribe(LocateSubject(viewportID), func(msg *nats.Msg) {
		data, err := EncodeFix(current(), time.Now())
		if err != nil {
			data, _ = EncodeFixError(err.Error())
		}
		_ = msg.Respond(data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", LocateSubject(viewportID), err)
	}
	return &DevicePublisher{conn: conn, viewportID: viewportID, sub: sub}, nil
}

// Publish sends one fix to the viewport's position subject.
func (d *DevicePublisher) Publish(c domain.Coordinate) error {
	data, err := EncodeFix(c, time.Now())
	if err != nil {
		return err
	}
	return d.conn.Publish(PositionSubject(d.viewportID), data)
}

// Close stops answering locate requests and flushes pending fixes.
func (d *DevicePublisher) Close() error {
	if err := d.sub.Unsubscribe(); err != nil {
		return err
	}
	return d.conn.Flush()
}
