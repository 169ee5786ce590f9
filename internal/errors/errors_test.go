package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"gocausal/domain/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error keeps code", ConfigInvalid("bad port"), CodeConfigInvalid},
		{"config sentinel", core.NewConfigError("alpha", "must be in (0, 1)"), CodeConfigInvalid},
		{"input sentinel", core.NewInputError("unknown variable %q", "x"), CodeInvalidInput},
		{"not found", core.NewNotFoundError("run", "abc"), CodeNotFound},
		{"degenerate typed", &core.DegenerateStatisticsError{Reason: core.ReasonZeroVariance, I: 1, J: -1}, CodeDegenerateStatistics},
		{"wrapped degenerate", Wrap(fmt.Errorf("pc: %w", core.ErrDegenerateStatistics), "discovery failed"), CodeDegenerateStatistics},
		{"plain error", fmt.Errorf("boom"), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	base := InvalidInput("no rows")
	wrapped := Wrap(base, "load failed")
	if GetCode(wrapped) != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, GetCode(wrapped))
	}
	if wrapped.Error() != "load failed: no rows" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestDatabaseError(t *testing.T) {
	if DatabaseError(nil, "failed to list runs") != nil {
		t.Error("DatabaseError(nil) should be nil")
	}

	cause := fmt.Errorf("connection refused")
	err := DatabaseError(cause, "failed to get run %s", "abc")
	if got := err.Error(); got != "failed to get run abc: connection refused" {
		t.Errorf("unexpected message %q", got)
	}
	if GetCode(err) != CodeDatabaseError {
		t.Errorf("expected code %s, got %s", CodeDatabaseError, GetCode(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("driver error should stay in the chain")
	}

	// a plain fmt wrap on top must not hide the code
	outer := fmt.Errorf("list: %w", err)
	if got := Classify(outer); got != CodeDatabaseError {
		t.Errorf("Classify() = %q, want %q", got, CodeDatabaseError)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("route GET /x")
	if err.Code != CodeNotFound || err.Error() != "route GET /x not found" {
		t.Errorf("unexpected error %+v", err)
	}
	if got := Classify(fmt.Errorf("lookup: %w", err)); got != CodeNotFound {
		t.Errorf("Classify() = %q, want %q", got, CodeNotFound)
	}
}
