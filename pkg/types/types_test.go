package types

import (
	"testing"
	"time"
)

func TestParseDurationBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    DurationBucket
		wantErr bool
	}{
		{in: "", want: DefaultDurationBucket},
		{in: "5-7 minutes", want: Duration5To7},
		{in: "  1-2 Minutes ", want: Duration1To2},
		{in: "3 – 5 minutes", want: Duration3To5},
		{in: "15+ minutes", want: Duration15Plus},
		{in: "4-6 minutes", wantErr: true},
		{in: "forever", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDurationBucket(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDurationBucket(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDurationBucket(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDurationBucket(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDurationBucketRange(t *testing.T) {
	t.Parallel()

	for _, b := range DurationBuckets() {
		lo, hi := b.Range()
		if lo <= 0 {
			t.Errorf("%s: lo = %v, want > 0", b, lo)
		}
		if b == Duration15Plus {
			if hi != 0 {
				t.Errorf("%s: hi = %v, want open-ended", b, hi)
			}
			continue
		}
		if hi <= lo {
			t.Errorf("%s: hi %v <= lo %v", b, hi, lo)
		}
	}

	lo, hi := Duration5To7.Range()
	if lo != 5*time.Minute || hi != 7*time.Minute {
		t.Errorf("5-7 range = [%v,%v]", lo, hi)
	}
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Gender{"": GenderAuto, "Male": GenderMale, "female": GenderFemale, "auto": GenderAuto} {
		got, err := ParseGender(in)
		if err != nil {
			t.Fatalf("ParseGender(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseGender(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseGender("robot"); err == nil {
		t.Error("ParseGender(robot): want error")
	}

	lo, hi := GenderMale.PitchRange()
	if lo != 75 || hi != 300 {
		t.Errorf("male pitch range = [%v,%v]", lo, hi)
	}
}

func TestParseDepth(t *testing.T) {
	t.Parallel()

	got, err := ParseDepth("")
	if err != nil || got != DepthStandard {
		t.Fatalf("ParseDepth(\"\") = %q, %v", got, err)
	}
	if _, err := ParseDepth("deep"); err == nil {
		t.Error("ParseDepth(deep): want error")
	}
}
