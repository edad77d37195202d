package monitoring

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	errs    []error
	panics  []any
	flushed int
}

func (r *recorder) CaptureException(err error, _ map[string]string) { r.errs = append(r.errs, err) }
func (r *recorder) CapturePanic(v any)                              { r.panics = append(r.panics, v) }
func (r *recorder) Flush(time.Duration)                             { r.flushed++ }

func TestRecoverReportsAndRepanics(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	defer Init(NopMonitor{})

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected re-panic with boom, got %v", r)
			}
		}()
		func() {
			defer Recover()
			panic("boom")
		}()
	}()
	if len(rec.panics) != 1 || rec.flushed != 1 {
		t.Fatalf("panic not reported: %+v", rec)
	}
}

func TestCaptureExceptionIgnoresNil(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	defer Init(NopMonitor{})
	CaptureException(nil, nil)
	CaptureException(errors.New("x"), map[string]string{"k": "v"})
	if len(rec.errs) != 1 {
		t.Fatalf("expected one error, got %d", len(rec.errs))
	}
}
