package errors

import (
	"fmt"
	"testing"
)

func TestQuickError_Error(t *testing.T) {
	err := &QuickError{
		Code:    ErrNoPendingTemplate,
		Status:  404,
		Message: "no pending MR template",
	}

	expected := "NO_PENDING_TEMPLATE: no pending MR template"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("issue_url is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "issue_url is required" {
		t.Errorf("Message = %q, want %q", err.Message, "issue_url is required")
	}
}

func TestNewNoPendingTemplate(t *testing.T) {
	err := NewNoPendingTemplate("applied")

	if err.Code != ErrNoPendingTemplate {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoPendingTemplate)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["state"] != "applied" {
		t.Errorf("Details[state] = %v, want %q", err.Details["state"], "applied")
	}
}

func TestNewSourceFetchFailed(t *testing.T) {
	err := NewSourceFetchFailed("https://gitlab.example.com/g/p/-/issues/1.json", fmt.Errorf("status 404"))

	if err.Code != ErrSourceFetchFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrSourceFetchFailed)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["url"] != "https://gitlab.example.com/g/p/-/issues/1.json" {
		t.Errorf("Details[url] = %v", err.Details["url"])
	}
}

func TestNewClipboardUnavailable(t *testing.T) {
	err := NewClipboardUnavailable()

	if err.Code != ErrClipboardUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrClipboardUnavailable)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
}

func TestNewStorageFault(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewStorageFault(fmt.Errorf("database or disk is full"))

		if err.Code != ErrStorageFault {
			t.Errorf("Code = %q, want %q", err.Code, ErrStorageFault)
		}
		if err.Status != 507 {
			t.Errorf("Status = %d, want 507", err.Status)
		}
		if err.Details["storage_error"] != "database or disk is full" {
			t.Errorf("Details[storage_error] = %v", err.Details["storage_error"])
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewStorageFault(nil)
		if err.Message != "failed to save MR template" {
			t.Errorf("Message = %q", err.Message)
		}
	})
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("database connection failed"))

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewNoPendingTemplate("no_template"), ErrNoPendingTemplate) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewNoPendingTemplate("no_template"), ErrStorageFault) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-QuickError", func(t *testing.T) {
		if Is(fmt.Errorf("plain error"), ErrInternal) {
			t.Error("Is() = true, want false for non-QuickError")
		}
	})

	t.Run("wrapped QuickError", func(t *testing.T) {
		wrapped := fmt.Errorf("capture: %w", NewStorageFault(nil))
		if !Is(wrapped, ErrStorageFault) {
			t.Error("Is() = false, want true for wrapped QuickError")
		}
	})
}
