package linklayer

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusSuccess},
		{StatusCommandDisallowed, StatusCommandDisallowed},
		{fmt.Errorf("configure: %w", StatusInvalidState), StatusInvalidState},
		{errUnknownValue, StatusInvalidParameters},
		{errors.New("boom"), StatusHardwareFailure},
	}
	for _, tc := range tests {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("%v: expected %#02x but got %#02x", tc.err, uint8(tc.want), uint8(got))
		}
	}
}

func TestMakeError(t *testing.T) {
	if err := makeError(StatusSuccess); err != nil {
		t.Errorf("expected nil but got %v", err)
	}
	err := makeError(StatusCommandDisallowed)
	if !errors.Is(err, StatusCommandDisallowed) {
		t.Errorf("expected command disallowed but got %v", err)
	}
	if err.Error() != "command disallowed" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
