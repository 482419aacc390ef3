package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubBroadcastOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	vendorID := uuid.New()
	channel := VendorAuditChannel(vendorID.String())

	clientA := hub.NewSSEClient(uuid.New(), vendorID)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAuditStarted, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAuditProgress, Data: map[string]any{"seq": 2}})

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventAuditStarted {
		t.Fatalf("first event: want=%s got=%s", SSEEventAuditStarted, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventAuditProgress {
		t.Fatalf("second event: want=%s got=%s", SSEEventAuditProgress, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New(), vendorID)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAuditCompleted, Data: map[string]any{"seq": 3}})
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventAuditCompleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventAuditCompleted, gotReconnect.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	vendorA := uuid.New()
	vendorB := uuid.New()

	clientA := hub.NewSSEClient(uuid.New(), vendorA)
	hub.AddChannel(clientA, VendorAuditChannel(vendorA.String()))
	clientB := hub.NewSSEClient(uuid.New(), vendorB)
	hub.AddChannel(clientB, VendorAuditChannel(vendorB.String()))

	hub.Broadcast(SSEMessage{
		Channel: VendorAuditChannel(vendorA.String()),
		Event:   SSEEventCertificateLinked,
	})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != SSEEventCertificateLinked {
		t.Fatalf("expected %s, got %s", SSEEventCertificateLinked, got.Event)
	}
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("vendor B must not receive vendor A events, got %s", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	vendorID := uuid.New()
	channel := VendorAuditChannel(vendorID.String())

	client := hub.NewSSEClient(uuid.New(), vendorID)
	hub.AddChannel(client, channel)

	// Nobody drains the client; the hub must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(client.Outbound)+5; i++ {
			hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAuditProgress, Data: map[string]any{"seq": i}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow consumer")
	}
	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("expected a full buffer of %d messages, got %d", cap(client.Outbound), got)
	}
}
