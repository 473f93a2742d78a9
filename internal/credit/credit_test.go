package credit

import (
	"testing"

	"github.com/shopspring/decimal"
)

func state(limit, used string, enabled bool) State {
	l, _ := decimal.NewFromString(limit)
	u, _ := decimal.NewFromString(used)
	return State{Limit: l, Used: u, Enabled: enabled}
}

func TestEvaluateExceeded(t *testing.T) {
	res := Evaluate(decimal.NewFromInt(5000), state("10000", "8000", true), true)
	if res.OK {
		t.Fatal("expected credit check to fail")
	}
	if !res.Available.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected available 2000, got %s", res.Available)
	}
	if !res.Requested.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected requested 5000, got %s", res.Requested)
	}
}

func TestEvaluateWithinLimit(t *testing.T) {
	res := Evaluate(decimal.NewFromInt(2000), state("10000", "8000", true), true)
	if !res.OK {
		t.Fatalf("expected pass, available %s", res.Available)
	}
}

func TestEvaluateCashTermAlwaysPasses(t *testing.T) {
	res := Evaluate(decimal.NewFromInt(999999), state("100", "100", true), false)
	if !res.OK {
		t.Fatal("cash terms must pass regardless of credit state")
	}
}

func TestEvaluateDisabledCreditPasses(t *testing.T) {
	res := Evaluate(decimal.NewFromInt(999999), state("100", "100", false), true)
	if !res.OK {
		t.Fatal("disabled credit flag must skip enforcement")
	}
}

func TestEvaluateExactlyAvailablePasses(t *testing.T) {
	res := Evaluate(decimal.NewFromInt(2000), state("10000", "8000", true), true)
	if !res.OK {
		t.Fatal("a total equal to the available credit must pass")
	}
}
