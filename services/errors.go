package services

import (
	"errors"
	"fmt"
)

// Common errors shared across services and the HTTP error mapping.
var (
	// Resources
	ErrNotFound             = errors.New("requested resource not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAvailabilityNotFound = errors.New("availability window not found")

	// State machine
	ErrInvalidTransition = errors.New("match state transition not allowed")
	ErrStaleState        = errors.New("match was modified by another request, refetch and retry")

	// Guard failures. All wrap ErrInvalidTransition so callers can match
	// on the broad kind while the message keeps the specific reason.
	ErrSlotNotAvailable  = fmt.Errorf("%w: selected slot is not in the available set", ErrInvalidTransition)
	ErrMatchNotPlayedYet = fmt.Errorf("%w: match has not been played yet", ErrInvalidTransition)
	ErrScoreSelfConfirm  = fmt.Errorf("%w: score must be confirmed by the opposing club", ErrInvalidTransition)
	ErrScoreSelfDispute  = fmt.Errorf("%w: the submitting club cannot dispute its own score", ErrInvalidTransition)

	// Validation
	ErrValidationFailed    = errors.New("validation failed")
	ErrSlotDatetimeMissing = errors.New("a slot datetime is required")
	ErrScoreImagesRequired = errors.New("both score sheet images are required")

	// Authorization / business rules
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrNotMatchClub       = errors.New("club is not a participant of this match")
	ErrOnlyAwaySchedules  = errors.New("only the away club picks the match slot")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrNicknameTaken          = errors.New("nickname is already taken")
	ErrClubNameTaken          = errors.New("club name is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// External collaborators
	ErrExternalService = errors.New("external service failure")
)
