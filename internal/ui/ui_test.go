package ui

import "testing"

func TestNewNotice(t *testing.T) {
	first := NewNotice(NoticeSuccess, "Photos uploaded successfully!")
	second := NewNotice(NoticeSuccess, "Photos uploaded successfully!")

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct identifiers, got %q and %q", first.ID, second.ID)
	}
	if first.Kind != NoticeSuccess || first.Message != "Photos uploaded successfully!" {
		t.Fatalf("unexpected notice: %#v", first)
	}
}
