package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("reserve line 2: %w", Conflict("item unavailable"))
	if got := StatusOf(err); got != http.StatusConflict {
		t.Fatalf("StatusOf = %d", got)
	}
	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
	if got := StatusOf(errors.New("raw")); got != http.StatusInternalServerError {
		t.Fatalf("StatusOf(raw) = %d", got)
	}
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusServiceUnavailable, KindUpstream},
		{http.StatusInternalServerError, KindUpstream},
	}
	for _, c := range cases {
		e := FromStatus(c.status, "x")
		if e.Kind != c.kind {
			t.Errorf("FromStatus(%d).Kind = %s, want %s", c.status, e.Kind, c.kind)
		}
	}
	if FromStatus(http.StatusUnprocessableEntity, "x").Status != http.StatusUnprocessableEntity {
		t.Error("422 must keep its status")
	}
}

func TestUpstreamUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Upstream("order store unavailable", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Upstream must unwrap to its cause")
	}
}
