package schederr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Invalid(CodePastDate, "past"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict(CodeDailyCapReached, "full"), http.StatusConflict},
		{Transition(CodeAlreadyTerminal, "done"), http.StatusUnprocessableEntity},
		{Unauthorized("nope"), http.StatusForbidden},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestAsUnwraps(t *testing.T) {
	inner := ConflictWith(CodeOverlapsExisting, []string{"iv-1"}, "overlap")
	wrapped := fmt.Errorf("booking: %w", inner)

	e, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find the typed error through wrapping")
	}
	if e.Code != CodeOverlapsExisting || len(e.ConflictIDs) != 1 {
		t.Fatalf("unexpected error: %+v", e)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("plain errors must not match")
	}
}
