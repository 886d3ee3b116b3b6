package leave

import (
	"testing"
	"time"
)

func TestProbationEndDate(t *testing.T) {
	tests := []struct {
		name    string
		joining time.Time
		want    time.Time
	}{
		{
			name:    "mid month adds three months",
			joining: date(2025, time.January, 15),
			want:    date(2025, time.April, 15),
		},
		{
			name:    "month end clamps to shorter month",
			joining: date(2025, time.January, 31),
			want:    date(2025, time.April, 30),
		},
		{
			name:    "clamps to february",
			joining: date(2024, time.November, 30),
			want:    date(2025, time.February, 28),
		},
		{
			name:    "clamps to leap february",
			joining: date(2023, time.November, 30),
			want:    date(2024, time.February, 29),
		},
		{
			name:    "year rollover",
			joining: date(2024, time.October, 10),
			want:    date(2025, time.January, 10),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProbationEndDate(tc.joining)
			if !got.Equal(tc.want) {
				t.Fatalf("ProbationEndDate(%s) = %s, want %s",
					tc.joining.Format(dateLayout), got.Format(dateLayout), tc.want.Format(dateLayout))
			}
		})
	}
}

func TestOnProbation(t *testing.T) {
	end := date(2025, time.April, 30)

	if !OnProbation(end, date(2025, time.April, 30)) {
		t.Fatal("probation end date itself should still count as on probation")
	}
	if !OnProbation(end, date(2025, time.March, 1)) {
		t.Fatal("date before probation end should be on probation")
	}
	if OnProbation(end, date(2025, time.May, 1)) {
		t.Fatal("day after probation end should not be on probation")
	}
}
