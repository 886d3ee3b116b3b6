package leave

import "testing"

func TestPolicyTable(t *testing.T) {
	annual, ok := PolicyFor(KindAnnual)
	if !ok {
		t.Fatal("annual policy missing")
	}
	if annual.MonthlyAccrual.String() != "1.5" {
		t.Fatalf("annual monthly accrual = %s, want 1.5", annual.MonthlyAccrual)
	}
	if annual.MaxCarryForward.String() != "12" {
		t.Fatalf("annual carry-forward cap = %s, want 12", annual.MaxCarryForward)
	}
	if annual.CanUseSameMonth {
		t.Fatal("annual leave should not be spendable in its accrual month")
	}

	optional, _ := PolicyFor(KindOptional)
	if optional.InitialAllocation.String() != "4" || optional.OptionalUsableCap.String() != "2" {
		t.Fatalf("optional policy = alloc %s / usable %s, want 4 / 2",
			optional.InitialAllocation, optional.OptionalUsableCap)
	}

	for _, kind := range []Kind{KindSick, KindMaternity} {
		policy, _ := PolicyFor(kind)
		if !policy.AllowedDuringProbation {
			t.Fatalf("%s should be allowed during probation", kind)
		}
	}
	for _, kind := range []Kind{KindAnnual, KindCasual, KindOptional, KindCompOff} {
		policy, _ := PolicyFor(kind)
		if policy.AllowedDuringProbation {
			t.Fatalf("%s should not be allowed during probation", kind)
		}
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("comp_off")
	if err != nil {
		t.Fatalf("ParseKind(comp_off) returned error: %v", err)
	}
	if kind != KindCompOff {
		t.Fatalf("ParseKind(comp_off) = %s", kind)
	}

	if _, err := ParseKind("sabbatical"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestKindsCoversPolicyTable(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != len(policies) {
		t.Fatalf("Kinds() returned %d kinds, policy table has %d", len(kinds), len(policies))
	}
	for _, kind := range kinds {
		if _, ok := PolicyFor(kind); !ok {
			t.Fatalf("kind %s missing from policy table", kind)
		}
	}
}
