package source

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchErrorClassification(t *testing.T) {
	cases := []struct {
		err   *FetchError
		retry bool
	}{
		{NewStatusError(401, errors.New("denied")), false},
		{NewStatusError(404, errors.New("missing")), false},
		{NewStatusError(429, errors.New("slow down")), true},
		{NewStatusError(503, errors.New("down")), true},
		{NewNetworkError(errors.New("dial")), true},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("refresh: %w", c.err)
		if got := errors.Is(wrapped, ErrTransient); got != c.retry {
			t.Errorf("%v: retryable want %v got %v", c.err, c.retry, got)
		}
		var fe *FetchError
		if !errors.As(wrapped, &fe) {
			t.Errorf("expected FetchError in chain")
		}
	}
}

func TestFetchErrorMessage(t *testing.T) {
	if got := NewStatusError(404, errors.New("list")).Error(); got != "upstream returned 404: list" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := NewNetworkError(errors.New("dial")).Error(); got != "upstream unreachable: dial" {
		t.Fatalf("unexpected message %q", got)
	}
}
