package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInstanceGroupID(t *testing.T) {
	a := InstanceGroupID("parlor")
	b := InstanceGroupID("parlor")

	// every instance must read the whole stream, so no two instances may
	// ever land in the same consumer group
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "parlor-"))
	assert.True(t, strings.HasPrefix(b, "parlor-"))
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	toChannel map[string][][]byte
	toAll     [][]byte
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{toChannel: map[string][][]byte{}}
}

func (b *recordingBroadcaster) BroadcastToChannel(channelID string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toChannel[channelID] = append(b.toChannel[channelID], payload)
}

func (b *recordingBroadcaster) BroadcastToAll(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toAll = append(b.toAll, payload)
}

func TestBusPublish(t *testing.T) {
	local := newRecordingBroadcaster()
	bus := NewBus(local, nil, zap.NewNop().Sugar())

	bus.Publish(context.Background(), Event{Type: MessageCreated, ChannelID: "ch1", Payload: map[string]string{"id": "m1"}})
	bus.Publish(context.Background(), Event{Type: ProfileUpdated})

	require.Len(t, local.toChannel["ch1"], 1)
	require.Len(t, local.toAll, 1)

	var ev Event
	require.NoError(t, json.Unmarshal(local.toChannel["ch1"][0], &ev))
	assert.Equal(t, MessageCreated, ev.Type)
	assert.WithinDuration(t, time.Now().UTC(), ev.At, time.Minute)
}

func TestDeliverLocal(t *testing.T) {
	local := newRecordingBroadcaster()
	bus := NewBus(local, nil, zap.NewNop().Sugar())

	bus.DeliverLocal("ch1", []byte(`{"type":"message.created"}`))
	bus.DeliverLocal("", []byte(`{"type":"profile.updated"}`))

	assert.Len(t, local.toChannel["ch1"], 1)
	assert.Len(t, local.toAll, 1)
}
