package adherence

import "testing"

func week(perDay float64) []float64 {
	out := make([]float64, 7)
	for i := range out {
		out[i] = perDay
	}
	return out
}

func TestMissingDayForcesPenalty(t *testing.T) {
	days := week(2000)
	days[3] = 0
	if got := Calculate(2000, days).Ratio; got != 0.6 {
		t.Fatalf("expected 0.6, got %v", got)
	}
	perfect := week(2000)
	perfect[6] = 0
	perfect[0] = 4000
	if got := Calculate(2000, perfect).Ratio; got != 0.6 {
		t.Fatalf("expected 0.6 with a missing day even at target, got %v", got)
	}
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		total float64
		want  float64
	}{
		{"exact", 14000, 1.2},
		{"diff 1400", 14000 + 1400, 1.2},
		{"diff 1401", 14000 + 1401, 1.0},
		{"diff 2800", 14000 - 2800, 1.0},
		{"diff 2801", 14000 - 2801, 0.8},
		{"diff 5600", 14000 + 5600, 0.8},
		{"diff 5601", 14000 + 5601, 0.6},
	}
	for _, c := range cases {
		got := Calculate(2000, week(c.total/7))
		if got.Ratio != c.want {
			t.Fatalf("%s: expected %v, got %v (diff %v)", c.name, c.want, got.Ratio, got.Diff)
		}
	}
}

func TestScenario14100(t *testing.T) {
	days := []float64{2000, 2000, 2000, 2000, 2000, 2000, 2100}
	res := Calculate(2000, days)
	if res.WeekTarget != 14000 || res.TotalCalories != 14100 || res.Diff != 100 || res.Ratio != 1.2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDefaultTargetAndNoAnalysis(t *testing.T) {
	if got := Calculate(0, week(2000)); got.WeekTarget != 14000 || got.Ratio != 1.2 {
		t.Fatalf("expected default 2000/day, got %+v", got)
	}
	if NoAnalysis().Ratio != 0.6 {
		t.Fatalf("no analysis must be the penalty ratio")
	}
}
