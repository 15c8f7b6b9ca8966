package authsession

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// blockingSink parks in Emit until released, signalling when the first
// event arrives.
type blockingSink struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func newBlockingSink() *blockingSink {
	return &blockingSink{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSink) Emit(_ context.Context, _ AuditEvent) {
	if !s.once {
		s.once = true
		close(s.started)
	}
	<-s.release
}

func waitForEvent(t *testing.T, ch <-chan AuditEvent) AuditEvent {
	t.Helper()

	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestAuditLoginSuccessEvent(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)
	sink := NewChannelSink(8)
	cfg := testConfig()
	cfg.Audit.Enabled = true
	f := buildManager(t, cfg, newMockDirectory(acct), func(b *Builder) {
		b.WithAuditSink(sink)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	event := waitForEvent(t, sink.Events())
	if event.EventType != "login_success" {
		t.Fatalf("expected login_success, got %q", event.EventType)
	}
	if !event.Success || event.AccountID != "u1" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.IP != "203.0.113.7" {
		t.Fatalf("expected client IP from context, got %q", event.IP)
	}
	if got := event.Metadata["email"]; got != "a***@example.com" {
		t.Fatalf("expected masked email, got %q", got)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected a timestamp")
	}
}

func TestAuditLoginFailureEvent(t *testing.T) {
	sink := NewChannelSink(8)
	cfg := testConfig()
	cfg.Audit.Enabled = true
	f := buildManager(t, cfg, newMockDirectory(), func(b *Builder) {
		b.WithAuditSink(sink)
	})

	_, err := f.manager.Login(context.Background(), "ghost@example.com", "whatever")
	if err == nil {
		t.Fatal("expected login failure")
	}

	event := waitForEvent(t, sink.Events())
	if event.EventType != "login_failure" || event.Success {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Error != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials code, got %q", event.Error)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)
	sink := NewChannelSink(8)
	f := buildManager(t, testConfig(), newMockDirectory(acct), func(b *Builder) {
		b.WithAuditSink(sink)
	})

	if _, err := f.manager.Login(context.Background(), "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	f.manager.Close()

	select {
	case event := <-sink.Events():
		t.Fatalf("unexpected event %+v", event)
	default:
	}
}

func TestAuditDropIfFull(t *testing.T) {
	sink := newBlockingSink()
	cfg := AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}
	d := newAuditDispatcher(cfg, sink)

	ctx := context.Background()
	d.Emit(ctx, AuditEvent{EventType: "first"})

	// Wait until the worker is parked inside the sink so the buffer
	// state is deterministic.
	select {
	case <-sink.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the sink")
	}

	d.Emit(ctx, AuditEvent{EventType: "second"}) // fills the buffer
	d.Emit(ctx, AuditEvent{EventType: "third"})  // dropped

	if got := d.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %d", got)
	}

	close(sink.release)
	d.Close()
}

func TestAuditCloseDrainsQueue(t *testing.T) {
	sink := NewChannelSink(8)
	cfg := AuditConfig{Enabled: true, BufferSize: 8}
	d := newAuditDispatcher(cfg, sink)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.Emit(ctx, AuditEvent{EventType: "queued"})
	}
	d.Close()

	for i := 0; i < 3; i++ {
		waitForEvent(t, sink.Events())
	}
	d.Emit(ctx, AuditEvent{EventType: "late"})
	select {
	case event := <-sink.Events():
		t.Fatalf("unexpected event after close: %+v", event)
	default:
	}
}

func TestAuditDispatcherNilSafe(t *testing.T) {
	var d *auditDispatcher
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		EventType: "login_success",
		AccountID: "u1",
		Success:   true,
		Metadata:  map[string]string{"email": "a***@example.com"},
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: "logout",
		Success:   true,
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.EventType != "login_success" || first.AccountID != "u1" {
		t.Fatalf("unexpected event %+v", first)
	}
	if first.Metadata["email"] != "a***@example.com" {
		t.Fatalf("unexpected metadata %v", first.Metadata)
	}
}
