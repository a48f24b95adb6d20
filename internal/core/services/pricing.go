package services

import (
	"fmt"

	"github.com/fma-academy/registration-service/internal/core/domain"
)

// Amounts are in pence.
var (
	planFees = map[domain.BillingPlan]int64{
		domain.PlanAnnual:  5000,
		domain.PlanMonthly: 2000,
	}
	packagePrices = map[string]int64{
		"Bronze":   4000,
		"Silver":   4500,
		"Gold":     5000,
		"Platinum": 5800,
	}
)

// additionalPackagePercent is what each package after the first costs,
// as a percentage of the full price.
const additionalPackagePercent = 90

// ResolveAmount returns the first collection for a plan and package booking
// in minor currency units: the plan fee plus the package price, with every
// package after the first at 10% off.
func ResolveAmount(plan domain.BillingPlan, pkg string, quantity int) (int64, error) {
	fee, ok := planFees[plan]
	if !ok {
		return 0, fmt.Errorf("%w: unknown membership option %q", domain.ErrInvalidInput, plan)
	}
	if pkg == "" {
		return fee, nil
	}
	price, ok := packagePrices[pkg]
	if !ok {
		return 0, fmt.Errorf("%w: unknown package %q", domain.ErrInvalidInput, pkg)
	}
	if quantity < 1 {
		quantity = 1
	}
	extra := int64(quantity-1) * price * additionalPackagePercent / 100
	return fee + price + extra, nil
}

// FormatGBP renders pence as a pound amount, e.g. 5000 -> "£50.00".
func FormatGBP(minor int64) string {
	return fmt.Sprintf("£%d.%02d", minor/100, minor%100)
}
