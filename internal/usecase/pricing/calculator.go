// Package pricing turns base rates, amount, duration and dates into a fee
// breakdown and instalment schedule under the statutory fee cap.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const maxGrossUpSteps = 64

type Calculator struct{ params Params }

func New(p Params) *Calculator {
	if p.RoundingUnit.IsZero() {
		p.RoundingUnit = one
	}
	return &Calculator{params: p}
}

func (c *Calculator) Params() Params { return c.params }

// Compute prices one loan. Self disbursement charges fees out of the
// requested amount; otherwise principal is grossed up so the borrower nets
// at least the requested amount.
func (c *Calculator) Compute(in Input) (*Result, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}

	firstDays := daysBetween(in.OriginationDate, in.FirstDueDate)
	totalDays := firstDays + laterPeriodDays*(in.Duration-1)

	rates := rateSet{
		monthly:   in.MonthlyInterestRate,
		first:     in.MonthlyInterestRate.Mul(decimal.NewFromInt(int64(firstDays))).Div(thirty),
		provision: in.ProvisionRate,
	}
	for _, f := range in.Fees {
		if f.Kind == FeeInsurance || f.Kind == FeeDD {
			rates.fixed = rates.fixed.Add(f.Rate)
		}
	}

	maxRate := c.params.DailyRateCap.Mul(decimal.NewFromInt(int64(totalDays)))
	rates, component, err := applyCap(rates, maxRate, in.Duration, totalDays)
	if err != nil {
		return nil, err
	}

	r := &Result{
		RequestedAmount:         in.Amount,
		SelfDisbursement:        in.SelfDisbursement,
		Duration:                in.Duration,
		OriginationDate:         in.OriginationDate,
		FirstDueDate:            in.FirstDueDate,
		FirstDays:               firstDays,
		TotalDays:               totalDays,
		ProvisionRate:           rates.provision,
		MonthlyInterestRate:     rates.monthly,
		FirstPeriodInterestRate: rates.first,
		MaxFeeRate:              maxRate,
		TotalFeeRate:            rates.total(in.Duration),
		CapApplied:              component != "",
		CapComponent:            component,
	}

	principal := in.Amount
	if !in.SelfDisbursement {
		principal, err = c.grossUp(in.Amount, rates.provision, in.Fees)
		if err != nil {
			return nil, err
		}
	}
	c.price(r, principal, in.Fees)

	if err := c.Settle(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Calculator) validate(in Input) error {
	switch {
	case !in.Amount.IsPositive(), in.Amount.LessThan(c.params.MinLoanAmount):
		return fmt.Errorf("%w: amount %s below minimum %s", ErrInvalidDurationOrAmount, in.Amount, c.params.MinLoanAmount)
	case in.Duration < 1, in.Duration < in.MinTenure, in.MaxTenure > 0 && in.Duration > in.MaxTenure:
		return fmt.Errorf("%w: duration %d outside [%d, %d]", ErrInvalidDurationOrAmount, in.Duration, in.MinTenure, in.MaxTenure)
	case !in.FirstDueDate.After(in.OriginationDate), daysBetween(in.OriginationDate, in.FirstDueDate) < 1:
		return fmt.Errorf("%w: first due date must follow origination", ErrInvalidDurationOrAmount)
	}
	return nil
}

// price sets principal-derived base amounts. They are never recomputed after this.
func (c *Calculator) price(r *Result, principal decimal.Decimal, fees []FeeSpec) {
	r.Principal = principal
	r.PricedOn = principal
	r.BaseProvision = principal.Mul(r.ProvisionRate).Round(0)
	r.Charges = make([]Charge, 0, len(fees))
	for _, f := range fees {
		r.Charges = append(r.Charges, Charge{
			Kind:    f.Kind,
			Rate:    f.Rate,
			Flat:    f.Flat,
			Taxable: f.Taxable,
			Amount:  principal.Mul(f.Rate).Round(0).Add(f.Flat),
		})
	}
}

func (c *Calculator) taxRate() decimal.Decimal {
	if !c.params.TaxEnabled {
		return decimal.Zero
	}
	return c.params.TaxRate
}

// net is what the borrower receives from principal p before any promotion.
func (c *Calculator) net(p, provisionRate decimal.Decimal, fees []FeeSpec) decimal.Decimal {
	prov := p.Mul(provisionRate).Round(0)
	taxBase := prov
	out := p.Sub(prov)
	for _, f := range fees {
		amt := p.Mul(f.Rate).Round(0).Add(f.Flat)
		out = out.Sub(amt)
		if f.Taxable {
			taxBase = taxBase.Add(amt)
		}
	}
	return out.Sub(c.taxRate().Mul(taxBase).Round(0))
}

// grossUp finds the smallest principal whose net covers cashOut.
func (c *Calculator) grossUp(cashOut, provisionRate decimal.Decimal, fees []FeeSpec) (decimal.Decimal, error) {
	tax := c.taxRate()
	eff := provisionRate.Add(tax.Mul(provisionRate))
	flat := decimal.Zero
	for _, f := range fees {
		eff = eff.Add(f.Rate)
		flat = flat.Add(f.Flat)
		if f.Taxable {
			eff = eff.Add(tax.Mul(f.Rate))
			flat = flat.Add(tax.Mul(f.Flat))
		}
	}
	if eff.GreaterThanOrEqual(one) {
		return decimal.Zero, ErrGrossUpDiverged
	}

	p := cashOut.Add(flat).Div(one.Sub(eff)).Ceil()
	for i := 0; i < maxGrossUpSteps; i++ {
		switch {
		case c.net(p, provisionRate, fees).LessThan(cashOut):
			p = p.Add(one)
		case p.GreaterThan(cashOut) && c.net(p.Sub(one), provisionRate, fees).GreaterThanOrEqual(cashOut):
			p = p.Sub(one)
		default:
			return p, nil
		}
	}
	return decimal.Zero, ErrGrossUpDiverged
}

// Settle recomputes provision total, tax, disbursed amount, schedule and the
// fee ledger from the stored base amounts and rates.
func (c *Calculator) Settle(r *Result) error {
	r.InsurancePremium, r.DDPremium, r.RegistrationFee = decimal.Zero, decimal.Zero, decimal.Zero
	charges, taxable := decimal.Zero, decimal.Zero
	for _, ch := range r.Charges {
		charges = charges.Add(ch.Amount)
		if ch.Taxable {
			taxable = taxable.Add(ch.Amount)
		}
		switch ch.Kind {
		case FeeInsurance:
			r.InsurancePremium = r.InsurancePremium.Add(ch.Amount)
		case FeeDD:
			r.DDPremium = r.DDPremium.Add(ch.Amount)
		case FeeRegistration:
			r.RegistrationFee = r.RegistrationFee.Add(ch.Amount)
		}
	}

	netProvision := maxDec(decimal.Zero, r.BaseProvision.Sub(r.PromoDiscount))
	r.ProvisionAmount = netProvision.Add(r.InterestFold)
	taxBase := netProvision.Add(taxable)
	r.TaxAmount = c.taxRate().Mul(taxBase).Round(0)

	r.DisbursedAmount = r.Principal.Sub(r.ProvisionAmount).Sub(r.TaxAmount).Sub(charges)
	if r.DisbursedAmount.IsNegative() {
		return fmt.Errorf("%w: disbursed %s", ErrNegativeDisbursement, r.DisbursedAmount)
	}

	r.Instalments = schedule(r, c.params.RoundingUnit)
	r.Fees = c.ledger(r, taxBase)
	return nil
}

func (c *Calculator) ledger(r *Result, taxBase decimal.Decimal) []FeeLine {
	pricedOn := r.PricedOn
	if pricedOn.IsZero() {
		pricedOn = r.Principal
	}
	lines := []FeeLine{{Kind: FeeProvision, Rate: r.ProvisionRate, Base: pricedOn, Amount: r.BaseProvision}}
	if r.PromoDiscount.IsPositive() {
		lines = append(lines, FeeLine{Kind: FeePromoDiscount, Rate: shareOf(r.PromoDiscount, r.Principal), Base: r.Principal, Amount: r.PromoDiscount})
	}
	if r.InterestFold.IsPositive() {
		lines = append(lines, FeeLine{Kind: FeeInterestFold, Rate: shareOf(r.InterestFold, r.Principal), Base: r.Principal, Amount: r.InterestFold})
	}
	for _, ch := range r.Charges {
		lines = append(lines, FeeLine{Kind: ch.Kind, Rate: ch.Rate, Base: pricedOn, Amount: ch.Amount})
	}
	if c.params.TaxEnabled {
		lines = append(lines, FeeLine{Kind: FeeTax, Rate: c.params.TaxRate, Base: taxBase, Amount: r.TaxAmount})
	}
	return lines
}

func shareOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(whole, 8)
}
