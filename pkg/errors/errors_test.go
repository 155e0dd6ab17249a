package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := New(CodeAlreadyExists, "project %q already exists", "shop-api").WithHint("use --force-overwrite")
	wrapped := fmt.Errorf("create: %w", base)

	if !IsCode(wrapped, CodeAlreadyExists) {
		t.Fatal("expected wrapped error to carry already_exists")
	}
	if IsCode(wrapped, CodeNotFound) {
		t.Fatal("unexpected not_found")
	}
	if got := HintOf(wrapped); got != "use --force-overwrite" {
		t.Errorf("hint = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Errorf("CodeOf(plain) = %s, want internal", got)
	}
}

func TestAppError_Error(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(cause, CodeInternal, "remove folder")
	if err.Error() != "remove folder: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if New(CodeNotFound, "missing").Error() != "missing" {
		t.Error("unexpected message for unwrapped error")
	}
}
