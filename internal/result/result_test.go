package result

import (
	"errors"
	"testing"
)

func TestOk(t *testing.T) {
	r := Ok("payload")
	if !r.Success() {
		t.Fatal("expected success")
	}
	if r.Data() != "payload" {
		t.Errorf("Data = %q, want %q", r.Data(), "payload")
	}
	if r.Err() != "" {
		t.Errorf("Err = %q, want empty", r.Err())
	}
}

func TestFail(t *testing.T) {
	r := Fail[string]("boom")
	if r.Success() {
		t.Fatal("expected failure")
	}
	if r.Err() != "boom" {
		t.Errorf("Err = %q, want %q", r.Err(), "boom")
	}
	if r.Data() != "" {
		t.Errorf("failure must carry zero payload, got %q", r.Data())
	}
}

func TestFailf(t *testing.T) {
	r := Failf[int]("code %d", 42)
	if r.Success() {
		t.Fatal("expected failure")
	}
	if r.Err() != "code 42" {
		t.Errorf("Err = %q, want %q", r.Err(), "code 42")
	}
}

func TestWrap(t *testing.T) {
	r := Wrap[[]byte]("download failed", errors.New("timeout"))
	if r.Success() {
		t.Fatal("expected failure")
	}
	if r.Err() != "download failed: timeout" {
		t.Errorf("Err = %q", r.Err())
	}
	if r.Data() != nil {
		t.Errorf("failure must carry zero payload, got %v", r.Data())
	}
}

func TestOkZeroValue(t *testing.T) {
	r := Ok[struct{}](struct{}{})
	if !r.Success() || r.Err() != "" {
		t.Fatalf("unexpected outcome: %+v", r)
	}
}
