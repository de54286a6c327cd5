package reminder

import (
	"testing"
	"time"
)

func TestNextDailyRun(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before anchor fires today",
			now:  time.Date(2026, 3, 10, 7, 0, 0, 0, loc),
			want: time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
		},
		{
			name: "after anchor fires tomorrow",
			now:  time.Date(2026, 3, 10, 9, 0, 0, 0, loc),
			want: time.Date(2026, 3, 11, 8, 0, 0, 0, loc),
		},
		{
			name: "exactly at anchor fires tomorrow",
			now:  time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
			want: time.Date(2026, 3, 11, 8, 0, 0, 0, loc),
		},
		{
			name: "month rollover",
			now:  time.Date(2026, 3, 31, 23, 0, 0, 0, loc),
			want: time.Date(2026, 4, 1, 8, 0, 0, 0, loc),
		},
		{
			name: "utc instant converted to local",
			now:  time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC), // 07:30 ICT
			want: time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDailyRun(tt.now, loc, "0 8 * * *")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDailyRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextDailyRun_InvalidCron(t *testing.T) {
	if _, err := NextDailyRun(time.Now(), time.UTC, "not a cron"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	// 01:30 UTC is 08:30 local; midnight must be the local one.
	got := StartOfDay(time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), loc)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}

	// 20:00 UTC is already 03:00 the next local day.
	got = StartOfDay(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC), loc)
	want = time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay across date line = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{"same instant", base, base, 0},
		{"one day later", base.Add(24 * time.Hour), base, 1},
		{"one day earlier", base.Add(-24 * time.Hour), base, -1},
		{"short dst day still one", base.Add(23 * time.Hour), base, 1},
		{"long dst day still one", base.Add(25 * time.Hour), base, 1},
		{"three days", base.Add(72 * time.Hour), base, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}
