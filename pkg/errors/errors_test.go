package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad precision: %d", -1)

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "bad precision: -1" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("Cause should be nil")
	}
	want := "INVALID_INPUT: bad precision: -1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "load %s", "floor2.osm")

	if err.Cause != cause {
		t.Errorf("Cause not preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is should find the cause through Unwrap")
	}
	want := "FILE_NOT_FOUND: load floor2.osm: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeDanglingReference, "way -12 references unknown node -99")

	if !Is(err, ErrCodeDanglingReference) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeNoAnchors) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeDanglingReference) {
		t.Error("Is should not match a plain error")
	}
}

func TestIs_WrappedChain(t *testing.T) {
	inner := New(ErrCodeCorruptFloor, "floor export inconsistent")
	outer := fmt.Errorf("merge floor 3: %w", inner)

	if !Is(outer, ErrCodeCorruptFloor) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
	if GetCode(outer) != ErrCodeCorruptFloor {
		t.Errorf("GetCode = %s, want %s", GetCode(outer), ErrCodeCorruptFloor)
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if GetCode(stderrors.New("plain")) != "" {
		t.Error("GetCode should return empty for plain errors")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeNoAnchors, "no matching anchors between floors")
	if UserMessage(err) != "no matching anchors between floors" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}

	plain := stderrors.New("plain failure")
	if UserMessage(plain) != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}
