package house

import (
	"errors"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"0000", 0, false},
		{"2359", 2359, false},
		{"0615", 615, false},
		{"615", 615, false},
		{" 2230 ", 2230, false},
		{"0", 0, false},
		{"2400", 0, true},
		{"1260", 0, true},
		{"-100", 0, true},
		{"12:30", 0, true},
		{"abcd", 0, true},
		{"", 0, true},
		{"01234", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrInvalidTime", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeOfDay_String(t *testing.T) {
	if got := TimeOfDay(615).String(); got != "0615" {
		t.Errorf("String() = %q, want %q", got, "0615")
	}
	if got := TimeOfDay(2230); got.Hour() != 22 || got.Minute() != 30 {
		t.Errorf("Hour/Minute = %d/%d, want 22/30", got.Hour(), got.Minute())
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name                string
		current, start, end TimeOfDay
		want                bool
	}{
		{"same-day inside", 1000, 900, 1700, true},
		{"same-day at start", 900, 900, 1700, true},
		{"same-day at end is outside", 1700, 900, 1700, false},
		{"same-day before", 800, 900, 1700, false},
		{"wrap before start", 2215, 2230, 615, false},
		{"wrap at start", 2230, 2230, 615, true},
		{"wrap before midnight", 2359, 2230, 615, true},
		{"wrap at midnight", 0, 2230, 615, true},
		{"wrap after midnight", 300, 2230, 615, true},
		{"wrap at end is outside", 615, 2230, 615, false},
		{"wrap midday", 1200, 2230, 615, false},
		{"empty window", 1200, 1200, 1200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.current, tt.start, tt.end); got != tt.want {
				t.Errorf("Contains(%v, %v, %v) = %v, want %v", tt.current, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestInWindow(t *testing.T) {
	got, err := InWindow("2300", "2230", "0615")
	if err != nil {
		t.Fatalf("InWindow() error = %v", err)
	}
	if !got {
		t.Error("InWindow(2300, 2230, 0615) = false, want true")
	}

	invalid := [][3]string{
		{"23x0", "2230", "0615"},
		{"2300", "2500", "0615"},
		{"2300", "2230", "0675"},
	}
	for _, in := range invalid {
		if _, err := InWindow(in[0], in[1], in[2]); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("InWindow(%v) error = %v, want ErrInvalidTime", in, err)
		}
	}
}
