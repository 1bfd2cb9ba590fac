package id

import (
	"errors"
	"sort"
	"testing"
	"time"
)

func stubNow(t *testing.T, tm time.Time) {
	t.Helper()
	now = func() time.Time { return tm }
	t.Cleanup(func() { now = time.Now })
}

func TestNew(t *testing.T) {
	s := New()
	if len(s) != 26 {
		t.Fatalf("expected 26-character id, got %d: %q", len(s), s)
	}
	if !IsValid(s) {
		t.Fatalf("New() = %q is not a valid ulid", s)
	}
}

func TestNewAtTimeRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 31, 32, 1_600_000_000_000, time.Now().UnixMilli(), 1<<48 - 1} {
		s, err := NewAt(ms)
		if err != nil {
			t.Fatalf("NewAt(%d): %s", ms, err)
		}
		got, err := Time(s)
		if err != nil {
			t.Fatalf("Time(%q): %s", s, err)
		}
		if got != ms {
			t.Errorf("Time(NewAt(%d)) = %d", ms, got)
		}
	}
}

func TestNewAtInvalid(t *testing.T) {
	for _, ms := range []int64{-1, 1 << 48} {
		if _, err := NewAt(ms); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewAt(%d): got err %v, want ErrInvalidArgument", ms, err)
		}
	}
}

func TestNewAtKnownPrefix(t *testing.T) {
	s, err := NewAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s[:10], "0000000000"; got != want {
		t.Errorf("timestamp prefix: got %q, want %q", got, want)
	}

	s, err = NewAt(1<<48 - 1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s[:10], "7ZZZZZZZZZ"; got != want {
		t.Errorf("timestamp prefix: got %q, want %q", got, want)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "01ARZ3NDEKTSV4RRFFQ69G5FAV", want: true},
		{in: "01ARZ3NDEKTSV4RRFFQ69G5FA", want: false},
		{in: "01ARZ3NDEKTSV4RRFFQ69G5FAVV", want: false},
		{in: "01arz3ndektsv4rrffq69g5fav", want: false},
		{in: "01ARZ3NDEKTSV4RRFFQ69G5FAI", want: false},
		{in: "01ARZ3NDEKTSV4RRFFQ69G5FAU", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.in); got != tt.want {
			t.Errorf("IsValid(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FAL"} {
		if _, err := Time(in); !errors.Is(err, ErrFormat) {
			t.Errorf("Time(%q): got err %v, want ErrFormat", in, err)
		}
	}
}

func TestCompare(t *testing.T) {
	stubNow(t, time.UnixMilli(1_000_000))
	a := New()
	stubNow(t, time.UnixMilli(1_000_001))
	b := New()

	if got, err := Compare(a, b); err != nil || got != -1 {
		t.Errorf("Compare(a, b): got %d, %v; want -1", got, err)
	}
	if got, err := Compare(b, a); err != nil || got != 1 {
		t.Errorf("Compare(b, a): got %d, %v; want 1", got, err)
	}
	if got, err := Compare(a, a); err != nil || got != 0 {
		t.Errorf("Compare(a, a): got %d, %v; want 0", got, err)
	}
	if _, err := Compare(a, "bogus"); !errors.Is(err, ErrFormat) {
		t.Errorf("Compare with invalid id: got err %v, want ErrFormat", err)
	}
}

func TestCompareWallClock(t *testing.T) {
	a := New()
	time.Sleep(2 * time.Millisecond)
	b := New()

	if got, err := Compare(a, b); err != nil || got != -1 {
		t.Errorf("Compare(%q, %q): got %d, %v; want -1", a, b, got, err)
	}
}

func TestStringOrderMatchesTime(t *testing.T) {
	var ids []string
	for _, ms := range []int64{5, 1 << 40, 32, 0, 1 << 20, 999} {
		s, err := NewAt(ms)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, s)
	}

	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		if c, err := Compare(ids[i-1], ids[i]); err != nil || c > 0 {
			t.Fatalf("sorted ids out of time order at %d: %q > %q", i, ids[i-1], ids[i])
		}
	}
}
