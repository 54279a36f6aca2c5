package souldraw

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"10s", 10 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{" 15M ", 15 * time.Minute, false},
		{"10x", 0, true},
		{"", 0, true},
		{"m", 0, true},
		{"0s", 0, true},
		{"-5m", 0, true},
		{"1.5h", 0, true},
		{"abc10m", 0, true},
		{"10m30s", 0, true},
		{"99999999999999999999d", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Fatalf("ParseDuration(%q) err = %v, want ErrInvalidDuration", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMilliseconds(t *testing.T) {
	for in, want := range map[string]int64{
		"10s": 10000,
		"5m":  300000,
		"2h":  7200000,
		"1d":  86400000,
	} {
		got, err := Milliseconds(in)
		if err != nil || got != want {
			t.Errorf("Milliseconds(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := Milliseconds("soon"); CategoryOf(err) != CategoryValidation {
		t.Errorf("invalid input category = %s", CategoryOf(err))
	}
}
