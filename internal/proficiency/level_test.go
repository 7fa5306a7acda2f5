package proficiency

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/abhisek/adaptutor/internal/apperr"
)

func TestClassify(t *testing.T) {
	b := DefaultBands()
	tests := []struct {
		score float64
		want  Level
	}{
		{0, Beginner},
		{0.39, Beginner},
		{0.4, Intermediate},
		{0.6, Intermediate},
		{0.7499, Intermediate},
		{0.75, Advanced},
		{0.82, Advanced},
		{1, Advanced},
		// float noise just under a boundary still reaches it
		{0.75 - 1e-12, Advanced},
	}
	for _, tt := range tests {
		got, err := b.Classify(tt.score)
		if err != nil {
			t.Errorf("Classify(%v): %v", tt.score, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyMonotonicOverUnitInterval(t *testing.T) {
	for _, b := range []Bands{DefaultBands(), {Intermediate: 0.5, Advanced: 0.8}} {
		prev := Beginner
		seen := map[Level]bool{}
		for i := 0; i <= 1000; i++ {
			score := float64(i) / 1000
			got, err := b.Classify(score)
			if err != nil {
				t.Fatalf("bands %+v: Classify(%v): %v", b, score, err)
			}
			if Compare(got, prev) < 0 {
				t.Fatalf("bands %+v: Classify(%v) = %s after %s", b, score, got, prev)
			}
			prev = got
			seen[got] = true
		}
		if len(seen) != len(AllLevels()) {
			t.Errorf("bands %+v: sweep reached %d levels, want %d", b, len(seen), len(AllLevels()))
		}
	}
}

func TestClassifyRejectsOutOfRange(t *testing.T) {
	b := DefaultBands()
	for _, s := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		if _, err := b.Classify(s); !apperr.IsValidation(err) {
			t.Errorf("Classify(%v) err = %v, want ValidationError", s, err)
		}
	}
}

func TestBandsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bands   Bands
		wantErr bool
	}{
		{"default", DefaultBands(), false},
		{"reversed", Bands{Intermediate: 0.8, Advanced: 0.5}, true},
		{"equal", Bands{Intermediate: 0.5, Advanced: 0.5}, true},
		{"zero lower", Bands{Intermediate: 0, Advanced: 0.5}, true},
		{"above one", Bands{Intermediate: 0.5, Advanced: 1.2}, true},
	}
	for _, tt := range tests {
		err := tt.bands.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !apperr.IsValidation(err) {
			t.Errorf("%s: err = %T, want validation error", tt.name, err)
		}
	}
}

func TestFloor(t *testing.T) {
	b := DefaultBands()
	for _, l := range AllLevels() {
		got, err := b.Classify(b.Floor(l))
		if err != nil || got != l {
			t.Errorf("Classify(Floor(%s)) = %s, %v", l, got, err)
		}
	}
}

func TestOrderingHelpers(t *testing.T) {
	if Compare(Beginner, Advanced) != -1 || Compare(Advanced, Beginner) != 1 || Compare(Intermediate, Intermediate) != 0 {
		t.Error("Compare ordering broken")
	}
	if Ordinal(Beginner) != 0 || Ordinal(Advanced) != 2 {
		t.Error("Ordinal broken")
	}
	if l, ok := Beginner.Lower(); ok || l != Beginner {
		t.Errorf("Beginner.Lower() = %s, %v", l, ok)
	}
	if l, ok := Advanced.Lower(); !ok || l != Intermediate {
		t.Errorf("Advanced.Lower() = %s, %v", l, ok)
	}
	if got := StepToward(Beginner, Advanced); got != Intermediate {
		t.Errorf("StepToward(Beginner, Advanced) = %s", got)
	}
	if got := StepToward(Advanced, Beginner); got != Intermediate {
		t.Errorf("StepToward(Advanced, Beginner) = %s", got)
	}
	if got := StepToward(Intermediate, Intermediate); got != Intermediate {
		t.Errorf("StepToward(Intermediate, Intermediate) = %s", got)
	}
}

func TestParseAndText(t *testing.T) {
	for _, l := range AllLevels() {
		got, err := ParseLevel(" " + l.DisplayName() + " ")
		if err != nil || got != l {
			t.Errorf("ParseLevel(%q) = %s, %v", l.DisplayName(), got, err)
		}
	}
	if _, err := ParseLevel("expert"); err == nil {
		t.Error("ParseLevel(expert) should fail")
	}

	b, err := json.Marshal(map[string]Level{"level": Intermediate})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"level":"intermediate"}` {
		t.Errorf("marshal = %s", b)
	}
	var out map[string]Level
	if err := json.Unmarshal(b, &out); err != nil || out["level"] != Intermediate {
		t.Errorf("unmarshal = %v, %v", out, err)
	}
	if _, err := json.Marshal(Level(7)); err == nil {
		t.Error("marshal of invalid level should fail")
	}
}

func TestPaceFor(t *testing.T) {
	want := map[Level]Pace{Beginner: PaceSlow, Intermediate: PaceModerate, Advanced: PaceFast}
	for l, p := range want {
		if got := PaceFor(l); got != p {
			t.Errorf("PaceFor(%s) = %s, want %s", l, got, p)
		}
	}
}
