package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-seating/internal/logger"
)

const holdKeyPrefix = "seat_hold:"

// Holds mirrors reservations into expiring redis keys. When a key
// expires before the seat is sold or released, the expiry listener
// returns the seat to AVAILABLE through the state machine, so a
// contended Sell still wins cleanly.
type Holds struct {
	Client *redis.Client
	Logger *logger.Logger
	TTL    time.Duration
}

func NewHolds(client *redis.Client, log *logger.Logger, ttl time.Duration) *Holds {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Holds{Client: client, Logger: log, TTL: ttl}
}

func holdKey(eventID, rowName string, seatNumber int) string {
	return fmt.Sprintf("%s%s:%s:%d", holdKeyPrefix, eventID, rowName, seatNumber)
}

// HoldSeat places an expiring marker for a freshly reserved seat.
func (h *Holds) HoldSeat(ctx context.Context, eventID, rowName string, seatNumber int) error {
	return h.Client.Set(ctx, holdKey(eventID, rowName, seatNumber), "held", h.TTL).Err()
}

// ReleaseHold drops the marker; a no-op when it has already expired.
func (h *Holds) ReleaseHold(ctx context.Context, eventID, rowName string, seatNumber int) error {
	return h.Client.Del(ctx, holdKey(eventID, rowName, seatNumber)).Err()
}

// EnableExpiryNotifications turns on keyspace events for expired keys.
func (h *Holds) EnableExpiryNotifications(ctx context.Context) error {
	return h.Client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// Unreserver is the slice of the seat service the expiry listener needs.
type Unreserver interface {
	Unreserve(ctx context.Context, eventID, rowName string, seatNumber int) error
}

// ListenExpirations subscribes to redis key expiry events and
// unreserves each expired hold. Failures to unreserve are expected
// when a Sell beat the expiry; they are logged and dropped. Runs until
// the pubsub channel closes.
func (h *Holds) ListenExpirations(ctx context.Context, svc Unreserver) {
	pubsub := h.Client.PSubscribe(ctx, fmt.Sprintf("__keyevent@%d__:expired", h.Client.Options().DB))
	h.Logger.Info("REDIS", "Subscribed to hold expiry notifications")

	go func() {
		for msg := range pubsub.Channel() {
			eventID, rowName, seatNumber, ok := parseHoldKey(msg.Payload)
			if !ok {
				continue
			}
			h.Logger.Info("SEAT_HOLD", fmt.Sprintf("Hold expired for %s/%s/%d, releasing reservation", eventID, rowName, seatNumber))
			if err := svc.Unreserve(ctx, eventID, rowName, seatNumber); err != nil {
				// Most often the seat was sold before the hold expired.
				h.Logger.Debug("SEAT_HOLD", fmt.Sprintf("Could not release %s/%s/%d: %v", eventID, rowName, seatNumber, err))
			}
		}
	}()
}

func parseHoldKey(key string) (eventID, rowName string, seatNumber int, ok bool) {
	if !strings.HasPrefix(key, holdKeyPrefix) {
		return "", "", 0, false
	}
	parts := strings.Split(strings.TrimPrefix(key, holdKeyPrefix), ":")
	if len(parts) != 3 {
		return "", "", 0, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, false
	}
	return parts[0], parts[1], n, true
}
