package rate

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAnnualizedRateDecimal(t *testing.T) {
	tests := []struct {
		name        string
		raw         *big.Int
		decimals    int32
		wantDecimal string
		wantPercent string
	}{
		{"five percent", big.NewInt(5e16), 18, "0.05", "5"},
		{"usdc six decimals", big.NewInt(123_456), 6, "0.123456", "12.3456"},
		{"zero", big.NewInt(0), 18, "0", "0"},
		{"nil raw", nil, 18, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AnnualizedRate{Raw: tt.raw, Decimals: tt.decimals}
			if got := r.Decimal().String(); got != tt.wantDecimal {
				t.Errorf("Decimal() = %s, want %s", got, tt.wantDecimal)
			}
			if got := r.Percent().String(); got != tt.wantPercent {
				t.Errorf("Percent() = %s, want %s", got, tt.wantPercent)
			}
		})
	}
}

func TestAnnualizedRateCmp(t *testing.T) {
	a := &AnnualizedRate{Raw: big.NewInt(5e16), Decimals: 18}
	b := &AnnualizedRate{Raw: big.NewInt(4e16), Decimals: 18}
	c := &AnnualizedRate{Raw: big.NewInt(50_000), Decimals: 6}

	if a.Cmp(b) != 1 || b.Cmp(a) != -1 {
		t.Error("5% should compare above 4%")
	}
	if a.Cmp(c) != 0 {
		t.Error("rates with different decimals but equal value should compare equal")
	}
}

func TestReportDrop(t *testing.T) {
	r := &Report{
		Baseline:  &AnnualizedRate{Raw: big.NewInt(5e16), Decimals: 18},
		Projected: &AnnualizedRate{Raw: big.NewInt(4e16), Decimals: 18},
	}
	if !r.Drop().Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Drop() = %s, want 0.01", r.Drop())
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "precondition",
			err:  ErrPreconditionFailed("underlying balance is %d", 5),
			want: "PRECONDITION_FAILED: underlying balance is 5",
		},
		{
			name: "invariant",
			err:  ErrInvariantViolated("projected not below baseline"),
			want: "INVARIANT_VIOLATED: projected not below baseline",
		},
		{
			name: "source",
			err:  ErrSourceFailed(errors.New("execution reverted")),
			want: "RATE_SOURCE_FAILED: rate source call failed: execution reverted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("strategy fixture: %w", ErrInvariantViolated("rate rose"))

	if !errors.Is(err, ErrInvariant) {
		t.Error("wrapped invariant error should match ErrInvariant")
	}
	if errors.Is(err, ErrPrecondition) || errors.Is(err, ErrSource) {
		t.Error("invariant error should not match other kinds")
	}
	if Code(err) != ErrCodeInvariant {
		t.Errorf("Code() = %q", Code(err))
	}
	if Code(errors.New("plain")) != "" {
		t.Error("Code() of a plain error should be empty")
	}
	if Code(nil) != "" {
		t.Error("Code(nil) should be empty")
	}
}
