package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"lending-engine/internal/domain/errs"
)

// SupportedVersion is the newest feature schema this build understands.
const SupportedVersion = 1

// Feature is one versioned snapshot of the dynamic business configuration.
// Components read it once per request and never mutate it.
type Feature struct {
	Version       int                          `yaml:"version" validate:"required,gte=1"`
	Pricing       PricingConfig                `yaml:"pricing"`
	RepeatPricing RepeatPricingConfig          `yaml:"repeat_pricing"`
	ZeroInterest  ZeroInterestConfig           `yaml:"zero_interest"`
	Promotions    []PromoCode                  `yaml:"promotions" validate:"dive"`
	Bureau        BureauConfig                 `yaml:"bureau"`
	FDC           FDCConfig                    `yaml:"fdc"`
	Inside        InsideConfig                 `yaml:"inside"`
	Outside       OutsideConfig                `yaml:"outside"`
	Messages      map[string]map[string]string `yaml:"messages"`
}

type PricingConfig struct {
	DailyRateCap  float64 `yaml:"daily_rate_cap" validate:"gt=0,lt=1"`
	MinLoanAmount float64 `yaml:"min_loan_amount" validate:"gte=0"`
	TaxEnabled    bool    `yaml:"tax_enabled"`
	TaxRate       float64 `yaml:"tax_rate" validate:"gte=0,lt=1"`
	RoundingUnit  int64   `yaml:"rounding_unit" validate:"gte=0"`
}

func (p PricingConfig) DailyCap() decimal.Decimal  { return decimal.NewFromFloat(p.DailyRateCap) }
func (p PricingConfig) MinAmount() decimal.Decimal { return decimal.NewFromFloat(p.MinLoanAmount) }
func (p PricingConfig) Tax() decimal.Decimal       { return decimal.NewFromFloat(p.TaxRate) }

// Unit is the schedule rounding unit; zero means whole currency units.
func (p PricingConfig) Unit() decimal.Decimal {
	if p.RoundingUnit <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(p.RoundingUnit)
}

type RepeatPricingConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Segments []string `yaml:"segments"`
	Methods  []string `yaml:"methods"`
}

// Applies reports whether repeat pricing is live for segment and method.
// Empty lists mean "any".
func (r RepeatPricingConfig) Applies(segment, method string) bool {
	if !r.Enabled {
		return false
	}
	return anyOrContains(r.Segments, segment) && anyOrContains(r.Methods, method)
}

type ZeroInterestConfig struct {
	Active             bool     `yaml:"active"`
	MinAmount          float64  `yaml:"min_amount" validate:"gte=0"`
	MaxAmount          float64  `yaml:"max_amount" validate:"omitempty,gtefield=MinAmount"`
	Durations          []int    `yaml:"durations" validate:"dive,gte=1"`
	TransactionMethods []string `yaml:"transaction_methods"`
	Whitelist          []string `yaml:"whitelist"`
	Segments           []string `yaml:"segments"`
	BucketDigits       []int    `yaml:"bucket_digits" validate:"dive,gte=0,lte=9"`
}

type PromoType string

const (
	PromoFixed      PromoType = "FIXED"
	PromoPercentage PromoType = "PERCENTAGE"
)

type PromoCode struct {
	Code             string    `yaml:"code" validate:"required"`
	Type             PromoType `yaml:"type" validate:"required,oneof=FIXED PERCENTAGE"`
	Amount           float64   `yaml:"amount" validate:"gt=0"`
	MaxDiscount      float64   `yaml:"max_discount" validate:"gte=0"`
	MinLoanAmount    float64   `yaml:"min_loan_amount" validate:"gte=0"`
	TransactionTypes []string  `yaml:"transaction_types"`
	ValidFrom        time.Time `yaml:"valid_from"`
	ValidUntil       time.Time `yaml:"valid_until"`
}

// ActiveAt reports whether the code can be redeemed at t.
func (p PromoCode) ActiveAt(t time.Time) bool {
	if !p.ValidFrom.IsZero() && t.Before(p.ValidFrom) {
		return false
	}
	if !p.ValidUntil.IsZero() && t.After(p.ValidUntil) {
		return false
	}
	return true
}

type BureauConfig struct {
	TimeoutMillis int `yaml:"timeout_millis" validate:"gte=0"`
}

func (b BureauConfig) Timeout() time.Duration {
	if b.TimeoutMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(b.TimeoutMillis) * time.Millisecond
}

type FDCConfig struct {
	Active       bool     `yaml:"active"`
	FailOpen     bool     `yaml:"fail_open"`
	StaleDays    int      `yaml:"stale_days" validate:"gte=0"`
	MaxPlatforms int      `yaml:"max_platforms" validate:"gte=0"`
	OwnIssuerID  string   `yaml:"own_issuer_id"`
	Whitelist    []string `yaml:"whitelist"`
}

type InsideConfig struct {
	Active       bool    `yaml:"active"`
	ThresholdPct float64 `yaml:"threshold_pct" validate:"gte=0,lte=100"`
	RecencyHours int     `yaml:"recency_hours" validate:"gte=0"`
	GraceDays    int     `yaml:"grace_days" validate:"gte=0"`
}

func (c InsideConfig) Threshold() decimal.Decimal { return decimal.NewFromFloat(c.ThresholdPct) }

type OutsideConfig struct {
	Active            bool    `yaml:"active"`
	FailOpen          bool    `yaml:"fail_open"`
	RatioThreshold    float64 `yaml:"ratio_threshold" validate:"gte=0"`
	MaxBehaviourScore float64 `yaml:"max_behaviour_score"`
	DPDThreshold      int     `yaml:"dpd_threshold" validate:"gte=0"`
	BlockHours        int     `yaml:"block_hours" validate:"gte=0"`
	BypassBuckets     []int   `yaml:"bypass_buckets" validate:"dive,gte=0,lte=9"`
}

func (c OutsideConfig) Ratio() decimal.Decimal { return decimal.NewFromFloat(c.RatioThreshold) }
func (c OutsideConfig) MaxScore() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxBehaviourScore)
}

// Promo finds a configured promo code.
func (f *Feature) Promo(code string) (PromoCode, bool) {
	for _, p := range f.Promotions {
		if p.Code == code {
			return p, true
		}
	}
	return PromoCode{}, false
}

var validate = validator.New()

// Validate checks field constraints and the schema version.
func (f *Feature) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: feature config: %v", errs.ErrConfigurationMissing, err)
	}
	if f.Version > SupportedVersion {
		return fmt.Errorf("%w: feature config version %d unsupported (max %d)",
			errs.ErrConfigurationMissing, f.Version, SupportedVersion)
	}
	return nil
}

// ParseFeature decodes a YAML (or JSON) blob and validates it.
func ParseFeature(data []byte) (*Feature, error) {
	var f Feature
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode feature config: %v", errs.ErrConfigurationMissing, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// MarshalFeature validates f and renders it in the same YAML form ParseFeature reads.
func MarshalFeature(f *Feature) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(f)
}

func anyOrContains(list []string, v string) bool {
	return len(list) == 0 || slices.Contains(list, v)
}
