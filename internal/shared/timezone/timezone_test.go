package timezone

import (
	"testing"
	"time"
)

func TestName(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"nil", nil, "UTC"},
		{"utc", time.UTC, "UTC"},
		{"named", rome, "Europe/Rome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.loc); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestName_LocalFromTZ(t *testing.T) {
	t.Setenv("TZ", "America/New_York")
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := Name(time.Local); got != "America/New_York" {
		t.Errorf("Name(time.Local) = %q, want America/New_York", got)
	}
}
