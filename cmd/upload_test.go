package cmd

import (
	"errors"
	"testing"
)

func TestUploadArgsValidation(t *testing.T) {
	if err := uploadCmd.Args(uploadCmd, []string{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected a usage error for a missing archive, got: %v", err)
	}
	if err := uploadCmd.Args(uploadCmd, []string{"a.zip", "b.zip"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected a usage error for extra arguments, got: %v", err)
	}
	if err := uploadCmd.Args(uploadCmd, []string{"a.zip"}); err != nil {
		t.Fatalf("a single archive must be accepted, got: %v", err)
	}
}
