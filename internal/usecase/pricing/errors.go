package pricing

import (
	"fmt"

	"lending-engine/internal/domain/errs"
)

var (
	ErrInvalidDurationOrAmount = fmt.Errorf("%w: amount or duration out of range", errs.ErrInvalidRequest)
	ErrFeeCapUnattainable      = fmt.Errorf("%w: insurance and dd rates exceed the fee cap", errs.ErrConfigurationMissing)
	ErrNegativeDisbursement    = fmt.Errorf("%w: fees exceed principal", errs.ErrInvalidRequest)
	ErrGrossUpDiverged         = fmt.Errorf("%w: fee rates leave nothing to disburse", errs.ErrConfigurationMissing)
)
