package node

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundMatchesBothVariants(t *testing.T) {
	if !IsNotFound(NewDirectoryNotFound("/a/")) {
		t.Fatal("expected DirectoryNotFound to report IsNotFound")
	}
	if !IsNotFound(NewFileNotFound("/a.txt")) {
		t.Fatal("expected FileNotFound to report IsNotFound")
	}
	if IsNotFound(NewFileAlreadyExists("/a.txt")) {
		t.Fatal("AlreadyExists should not report IsNotFound")
	}
}

func TestIsAlreadyExistsMatchesBothVariants(t *testing.T) {
	if !IsAlreadyExists(NewDirectoryAlreadyExists("/a/")) {
		t.Fatal("expected DirectoryAlreadyExists to report IsAlreadyExists")
	}
	if !IsAlreadyExists(NewFileAlreadyExists("/a.txt")) {
		t.Fatal("expected FileAlreadyExists to report IsAlreadyExists")
	}
	if IsAlreadyExists(NewFileNotFound("/a.txt")) {
		t.Fatal("NotFound should not report IsAlreadyExists")
	}
}

func TestIsIntegrityFaultMatchesWriteAndParseErrors(t *testing.T) {
	if !IsIntegrityFault(NewWriteError("name too long", nil)) {
		t.Fatal("expected WriteError to report IsIntegrityFault")
	}
	if !IsIntegrityFault(NewParseError("bad header", nil)) {
		t.Fatal("expected ParseError to report IsIntegrityFault")
	}
	if IsIntegrityFault(NewFileNotFound("/a.txt")) {
		t.Fatal("NotFound should not report IsIntegrityFault")
	}
}

func TestErrorsAsUnwrapsWrappedCause(t *testing.T) {
	cause := errors.New("short read")
	err := NewParseError("parsing header", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected errors.As to resolve to *ParseError")
	}
}

func TestGenericErrorIsOneFSErrorButNotOtherCategories(t *testing.T) {
	err := NewOneFSError("import file /a.txt", fmt.Errorf("host read failed"))
	var base OneFSError
	if !errors.As(err, &base) {
		t.Fatal("expected NewOneFSError to satisfy OneFSError")
	}
	if IsNotFound(err) || IsAlreadyExists(err) || IsIntegrityFault(err) {
		t.Fatal("generic error should not match any specific category")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewWriteError("write failed", errors.New("disk full"))
	if got := err.Error(); got != "write failed: disk full" {
		t.Fatalf("got %q, want %q", got, "write failed: disk full")
	}
}
