// services/errors.go - Shared service errors
package services

import "errors"

var (
	ErrUnknownAction        = errors.New("unknown action type")
	ErrUserNotFound         = errors.New("user not found")
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrOpportunityInactive  = errors.New("opportunity is not active")
	ErrOpportunityFull      = errors.New("opportunity has no spots left")
	ErrNotStudent           = errors.New("only students can apply")
	ErrDuplicateApplication = errors.New("already applied to this opportunity")
	ErrBudgetExceeded       = errors.New("ai budget exhausted")
	ErrInsufficientXP       = errors.New("not enough xp")
	ErrPowerUpNotFound      = errors.New("power-up not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrRecoveryPathNotFound = errors.New("recovery path not found")
	ErrInvalidAlertState    = errors.New("alert state does not allow this transition")
	ErrGeneratorUnavailable = errors.New("text generator not configured")
)
