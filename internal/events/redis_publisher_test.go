package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherFansOut(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "scheduling.events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	local := NewInMemoryDispatcher()
	var seen []EventType
	publisher := NewRedisPublisher(local, client, "scheduling.events")
	publisher.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	event := Event{ID: "evt-1", Type: EventTicketCreated, AggregateID: "ticket-1", Actor: "SYSTEM", Timestamp: time.Unix(0, 0).UTC()}
	require.NoError(t, publisher.Publish(ctx, event))
	assert.Equal(t, []EventType{EventTicketCreated}, seen)

	select {
	case msg := <-sub.Channel():
		var decoded Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		assert.Equal(t, "evt-1", decoded.ID)
		assert.Equal(t, EventTicketCreated, decoded.Type)
		assert.Equal(t, "ticket-1", decoded.AggregateID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published to redis")
	}
}

func TestRedisPublisherWithoutClient(t *testing.T) {
	publisher := NewRedisPublisher(NewInMemoryDispatcher(), nil, "")
	assert.NoError(t, publisher.Publish(context.Background(), Event{ID: "evt-1", Type: EventTicketCreated}))
}
