package application

import "testing"

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"name": "Name missing.", "files": "No files."}}
	if got := withFields.Error(); got != "No files. Name missing." {
		t.Fatalf("expected field messages in field order, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !validationError("name", emptyAlbumName).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("first", "value")
	v.add("first", "replaced")
	if got := v.FieldErrors["first"]; got != "replaced" {
		t.Fatalf("expected add to overwrite the field, got %q", got)
	}
	if len(v.FieldErrors) != 1 {
		t.Fatalf("expected one field, got %d", len(v.FieldErrors))
	}
}
