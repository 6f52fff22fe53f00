package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestReasonSurvivesWrapping(t *testing.T) {
	err := Validationf(ErrSpacing, "corner %s", "V[a b c]")
	wrapped := fmt.Errorf("build outpost: %w", err)

	if !errors.Is(wrapped, ErrSpacing) {
		t.Fatalf("errors.Is lost the reason: %v", wrapped)
	}
	if KindOf(wrapped) != KindValidation {
		t.Fatalf("kind = %s, want validation", KindOf(wrapped))
	}
	if got := err.Error(); got != "corner V[a b c]: too close to another city" {
		t.Fatalf("message = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validation(ErrCooldown), KindValidation},
		{NotFoundf("city %d", 3), KindNotFound},
		{Corruptf("bad header"), KindCorrupt},
		{WrapCorrupt("decode", errors.New("eof")), KindCorrupt},
		{errors.New("plain"), KindInternal},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %s, want %s", c.err, got, c.want)
		}
	}
	if IsValidation(nil) {
		t.Fatalf("nil is not a validation error")
	}
}
