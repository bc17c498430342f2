package logging

import (
	"context"
	"testing"
)

func TestFieldConstructorsApplyToEntry(t *testing.T) {
	e := &LogEntry{}
	fields := []Field{
		RequestID("req-1"),
		UserID("user-1"),
		SessionID("SESS-1"),
		ConnID("conn-1"),
		MsgType("D"),
		Component("session"),
		Duration(12.5),
		String("k", "v"),
		Int("i", 7),
		Int64("i64", 8),
		Float64("f", 1.5),
		Bool("b", true),
		Any("a", []int{1, 2}),
	}
	for _, f := range fields {
		f.Apply(e)
	}

	if e.RequestID != "req-1" || e.UserID != "user-1" || e.SessionID != "SESS-1" || e.ConnID != "conn-1" {
		t.Fatalf("top-level fields not applied: %+v", e)
	}
	if e.MsgType != "D" || e.Component != "session" || e.Duration != 12.5 {
		t.Fatalf("top-level fields not applied: %+v", e)
	}
	if e.Extra["k"] != "v" || e.Extra["i"] != 7 || e.Extra["i64"] != int64(8) {
		t.Fatalf("extra fields not applied: %+v", e.Extra)
	}
	if e.Extra["f"] != 1.5 || e.Extra["b"] != true {
		t.Fatalf("extra fields not applied: %+v", e.Extra)
	}
}

func TestContextHelpersRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-2")
	ctx = ContextWithUserID(ctx, "user-2")
	ctx = ContextWithSessionID(ctx, "SESS-2")

	fields := FieldsFromContext(ctx)
	if len(fields) != 3 {
		t.Fatalf("len(fields) = %d, want 3", len(fields))
	}

	e := &LogEntry{}
	for _, f := range fields {
		f.Apply(e)
	}
	if e.RequestID != "req-2" || e.UserID != "user-2" || e.SessionID != "SESS-2" {
		t.Fatalf("fields from context not applied: %+v", e)
	}
}

func TestFieldsFromContextEmpty(t *testing.T) {
	if fields := FieldsFromContext(context.Background()); len(fields) != 0 {
		t.Fatalf("len(fields) = %d, want 0 for an empty context", len(fields))
	}
}
