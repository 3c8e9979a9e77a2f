package model

import (
	"strings"
	"testing"
)

func TestValidateQuest(t *testing.T) {
	tests := []struct {
		name      string
		questName string
		wantCount int
		wantField string
	}{
		{"valid", "Slay the dragon", 0, ""},
		{"blank", "", 1, "name"},
		{"whitespace", "   ", 1, "name"},
		{"too long", strings.Repeat("a", MaxNameLength+1), 1, "name"},
		{"max length", strings.Repeat("a", MaxNameLength), 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateQuest(tt.questName, "")
			if got := errs.Count(); got != tt.wantCount {
				t.Fatalf("count = %d, want %d (%v)", got, tt.wantCount, errs)
			}
			if tt.wantField != "" && len(errs[tt.wantField]) == 0 {
				t.Errorf("expected messages for %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidationErrorsCount(t *testing.T) {
	errs := ValidationErrors{}
	if !errs.Empty() {
		t.Error("new errors should be empty")
	}
	errs.Add("name", "can't be blank")
	errs.Add("name", "is too short")
	errs.Add("base", "something else")
	if got := errs.Count(); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if errs["name"][1] != "is too short" {
		t.Errorf("order not preserved: %v", errs["name"])
	}
}
