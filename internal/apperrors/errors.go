package apperrors

import (
	"errors"
	"fmt"

	"github.com/SscSPs/trust_desk_app/internal/utils"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidState indicates an action attempted on a request that is no longer pending.
var ErrInvalidState = errors.New("request already processed")

// ErrInsufficientFunds indicates an approval amount larger than the trust balance.
var ErrInsufficientFunds = errors.New("insufficient balance")

// ErrPolicyCapExceeded indicates the General Support monthly cap would be exceeded.
var ErrPolicyCapExceeded = errors.New("monthly cap exceeded")

// ErrPolicyBlocked indicates the request carries a blocking policy flag.
var ErrPolicyBlocked = errors.New("request blocked by trust policy")

// ErrExternalService indicates the extraction service failed or returned unusable output.
var ErrExternalService = errors.New("external service error")

// ErrInternal indicates an unexpected failure inside the service.
var ErrInternal = errors.New("internal error")

// InsufficientFundsError carries the figures of a failed balance check.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient balance. Available: %s, Requested: %s",
		utils.FormatUSD(e.Available), utils.FormatUSD(e.Requested))
}

// Is lets errors.Is match ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// PolicyCapExceededError carries the figures of a failed monthly cap check.
type PolicyCapExceededError struct {
	Cap       decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *PolicyCapExceededError) Error() string {
	return fmt.Sprintf("General Support monthly cap of %s exceeded. Already spent this month: %s, Remaining: %s, Requested: %s",
		utils.FormatUSD(e.Cap), utils.FormatUSD(e.Spent), utils.FormatUSD(e.Remaining), utils.FormatUSD(e.Requested))
}

// Is lets errors.Is match ErrPolicyCapExceeded.
func (e *PolicyCapExceededError) Is(target error) bool {
	return target == ErrPolicyCapExceeded
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// External wraps ErrExternalService around the cause.
func External(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrExternalService, msg)
	}
	return fmt.Errorf("%w: %s: %v", ErrExternalService, msg, cause)
}
