package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ms-seating/internal/logger"
)

func TestParseHoldKey(t *testing.T) {
	eventID, rowName, seatNumber, ok := parseHoldKey("seat_hold:event1:A:12")
	require.True(t, ok)
	assert.Equal(t, "event1", eventID)
	assert.Equal(t, "A", rowName)
	assert.Equal(t, 12, seatNumber)
}

func TestParseHoldKeyRejectsForeignKeys(t *testing.T) {
	cases := []string{
		"session:event1:A:1",      // different prefix
		"seat_hold:event1:A",      // too few parts
		"seat_hold:event1:A:1:2",  // too many parts
		"seat_hold:event1:A:nope", // non-numeric seat
		"",
	}
	for _, key := range cases {
		_, _, _, ok := parseHoldKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestHoldKeyRoundTrip(t *testing.T) {
	key := holdKey("event1", "B", 4)
	eventID, rowName, seatNumber, ok := parseHoldKey(key)
	require.True(t, ok)
	assert.Equal(t, "event1", eventID)
	assert.Equal(t, "B", rowName)
	assert.Equal(t, 4, seatNumber)
}

type recordingUnreserver struct {
	released chan [3]interface{}
}

func (r *recordingUnreserver) Unreserve(_ context.Context, eventID, rowName string, seatNumber int) error {
	r.released <- [3]interface{}{eventID, rowName, seatNumber}
	return nil
}

// TestHoldExpiryIntegration runs the full hold lifecycle against a real
// Redis container, including the keyspace expiry notification path.
func TestHoldExpiryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{
		Addr: host + ":" + port.Port(),
	})
	defer client.Close()

	holds := NewHolds(client, logger.NewNop(), time.Second)
	require.NoError(t, holds.EnableExpiryNotifications(ctx))

	rec := &recordingUnreserver{released: make(chan [3]interface{}, 1)}
	holds.ListenExpirations(ctx, rec)

	// Released holds never reach the listener.
	require.NoError(t, holds.HoldSeat(ctx, "event1", "B", 2))
	require.NoError(t, holds.ReleaseHold(ctx, "event1", "B", 2))

	// An expired hold must come back through Unreserve.
	require.NoError(t, holds.HoldSeat(ctx, "event1", "A", 1))

	select {
	case got := <-rec.released:
		assert.Equal(t, [3]interface{}{"event1", "A", 1}, got)
	case <-time.After(10 * time.Second):
		t.Fatal("hold expiry was never delivered")
	}
}
