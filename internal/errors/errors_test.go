package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := ConfigInvalid("TEST_FRACTION must be in (0, 1)")
	wrapped := Wrap(base, "configuration validation failed")

	if GetCode(wrapped) != CodeConfigInvalid {
		t.Errorf("code = %s, want %s", GetCode(wrapped), CodeConfigInvalid)
	}
	if !stderrors.Is(wrapped, base) {
		t.Error("wrapped error should unwrap to the original")
	}
}

func TestWrap_ForeignErrorGetsInternalCode(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "failed to write %s", "results.csv")
	if GetCode(wrapped) != CodeInternalError {
		t.Errorf("code = %s, want %s", GetCode(wrapped), CodeInternalError)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "anything") != nil {
		t.Error("wrapping nil must stay nil")
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if code := GetCode(fmt.Errorf("plain")); code != "UNKNOWN" {
		t.Errorf("code = %s, want UNKNOWN", code)
	}
}

func TestConstructors(t *testing.T) {
	if GetCode(IngestError("matrix.csv", fmt.Errorf("bad row"))) != CodeIngestError {
		t.Error("IngestError code mismatch")
	}
	if GetCode(AnalysisError("correlation", fmt.Errorf("boom"))) != CodeAnalysisError {
		t.Error("AnalysisError code mismatch")
	}
	if GetCode(DatabaseError("connect refused")) != CodeDatabaseError {
		t.Error("DatabaseError code mismatch")
	}
	if GetCode(InvalidInput("no layers")) != CodeInvalidInput {
		t.Error("InvalidInput code mismatch")
	}
}
