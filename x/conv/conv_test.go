package conv

import "testing"

func TestClockAndDate(t *testing.T) {
	var buf [16]byte
	if s := string(Clock(buf[:0], 9, 5, 0)); s != "09:05:00" {
		t.Fatalf("clock %q", s)
	}
	if s := string(Date(buf[:0], 1, 12, 2024)); s != "01/12/24" {
		t.Fatalf("date %q", s)
	}
}

func TestPad2(t *testing.T) {
	cases := map[int]string{0: "00", 7: "07", 42: "42", 123: "23", -3: "00"}
	for n, want := range cases {
		if got := string(Pad2(nil, n)); got != want {
			t.Errorf("Pad2(%d) = %q", n, got)
		}
	}
}

func TestNoAllocWithCapacity(t *testing.T) {
	var buf [8]byte
	n := testing.AllocsPerRun(100, func() { _ = Clock(buf[:0], 23, 59, 59) })
	if n != 0 {
		t.Fatalf("allocs = %v", n)
	}
}
