package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("NB_TEST_INT", "12")
	t.Setenv("NB_TEST_BAD_INT", "x")
	t.Setenv("NB_TEST_BOOL", "off")
	t.Setenv("NB_TEST_FLOAT", "0.25")
	t.Setenv("NB_TEST_SECS", "3")

	if Int("NB_TEST_INT", 1) != 12 || Int("NB_TEST_BAD_INT", 7) != 7 || Int("NB_TEST_MISSING", 4) != 4 {
		t.Fatalf("Int defaults wrong")
	}
	if Bool("NB_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	if Float("NB_TEST_FLOAT", 1) != 0.25 {
		t.Fatalf("Float wrong")
	}
	if Seconds("NB_TEST_SECS", time.Minute) != 3*time.Second || Seconds("NB_TEST_MISSING", time.Minute) != time.Minute {
		t.Fatalf("Seconds wrong")
	}
	if String("NB_TEST_MISSING", "d") != "d" {
		t.Fatalf("String default wrong")
	}
}
