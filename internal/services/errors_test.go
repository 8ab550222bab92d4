package services

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrCorruptInput, "trodes", "settings", "bad header", io.ErrUnexpectedEOF)
	if !errors.Is(err, ErrCorruptInput) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "corrupt input: trodes: settings: bad header: unexpected EOF"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestSkipsSession(t *testing.T) {
	for _, marker := range []error{ErrMissingInput, ErrCorruptInput, ErrValidation, ErrConflict} {
		if !SkipsSession(Wrap(marker, "c", "o", "m", nil)) {
			t.Fatalf("%v must skip the session", marker)
		}
	}
	if SkipsSession(Wrap(ErrTransient, "c", "o", "m", nil)) {
		t.Fatal("transient failures are not session skips")
	}
	if SkipsSession(nil) {
		t.Fatal("nil error is not a skip")
	}
}

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()
	if _, ok := SessionFromContext(ctx); ok {
		t.Fatal("empty context must have no session")
	}

	ctx = WithSession(ctx, "SL18_D19")
	ctx = WithInterface(ctx, "dio")
	ctx = WithRunID(ctx, "run-1")

	if session, ok := SessionFromContext(ctx); !ok || session != "SL18_D19" {
		t.Fatalf("session = %q, %v", session, ok)
	}
	if name, ok := InterfaceFromContext(ctx); !ok || name != "dio" {
		t.Fatalf("interface = %q, %v", name, ok)
	}
	if rid, ok := RunIDFromContext(ctx); !ok || rid != "run-1" {
		t.Fatalf("run id = %q, %v", rid, ok)
	}
}
