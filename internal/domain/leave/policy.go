package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of leave types. Policy rules dispatch on Kind via
// the table below rather than string comparisons scattered through the code.
type Kind string

const (
	KindAnnual    Kind = "annual"
	KindSick      Kind = "sick"
	KindCasual    Kind = "casual"
	KindCompOff   Kind = "comp_off"
	KindMaternity Kind = "maternity"
	KindOptional  Kind = "optional"
)

// Policy carries the rules for one leave kind.
type Policy struct {
	Kind Kind

	// MonthlyAccrual is the entitlement granted per calendar month by the
	// accrual run. Zero means the kind does not accrue monthly.
	MonthlyAccrual decimal.Decimal

	// MaxDays is the annual cap recorded on the leave type.
	MaxDays int

	// MaxCarryForward caps how much unused balance rolls into the next year.
	MaxCarryForward decimal.Decimal

	// InitialAllocation seeds a fresh year's balance when an employee's
	// balances are initialized.
	InitialAllocation decimal.Decimal

	// IsOptional marks festival-style optional leave: allocated
	// InitialAllocation days but usable only up to OptionalUsableCap.
	IsOptional        bool
	OptionalUsableCap decimal.Decimal

	// CanUseSameMonth is false for kinds whose accrual of the current month
	// should not be spent in that month; violations are warnings, not errors.
	CanUseSameMonth bool

	// AllowedDuringProbation permits requests while the employee is still
	// inside the probation window.
	AllowedDuringProbation bool
}

var policies = map[Kind]Policy{
	KindAnnual: {
		Kind:            KindAnnual,
		MonthlyAccrual:  decimal.RequireFromString("1.5"),
		MaxDays:         18,
		MaxCarryForward: decimal.NewFromInt(12),
		CanUseSameMonth: false,
	},
	KindSick: {
		Kind:                   KindSick,
		MaxDays:                12,
		InitialAllocation:      decimal.NewFromInt(12),
		CanUseSameMonth:        true,
		AllowedDuringProbation: true,
	},
	KindCasual: {
		Kind:              KindCasual,
		MaxDays:           6,
		InitialAllocation: decimal.NewFromInt(6),
		CanUseSameMonth:   true,
	},
	KindCompOff: {
		Kind:            KindCompOff,
		MaxDays:         30,
		CanUseSameMonth: true,
	},
	KindMaternity: {
		Kind:                   KindMaternity,
		MaxDays:                180,
		InitialAllocation:      decimal.NewFromInt(180),
		CanUseSameMonth:        true,
		AllowedDuringProbation: true,
	},
	KindOptional: {
		Kind:              KindOptional,
		MaxDays:           4,
		InitialAllocation: decimal.NewFromInt(4),
		IsOptional:        true,
		OptionalUsableCap: decimal.NewFromInt(2),
		CanUseSameMonth:   true,
	},
}

func PolicyFor(kind Kind) (Policy, bool) {
	p, ok := policies[kind]
	return p, ok
}

func Kinds() []Kind {
	return []Kind{KindAnnual, KindSick, KindCasual, KindCompOff, KindMaternity, KindOptional}
}

func ParseKind(value string) (Kind, error) {
	kind := Kind(value)
	if _, ok := policies[kind]; !ok {
		return "", fmt.Errorf("unknown leave kind %q", value)
	}
	return kind, nil
}
