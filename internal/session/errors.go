package session

import (
	"fmt"

	"contourqa/internal/failure"
)

var (
	ErrAlreadyCaptured       = fmt.Errorf("%w: photos already captured", failure.ErrPrecondition)
	ErrPhotosNotTaken        = fmt.Errorf("%w: photos not taken", failure.ErrPrecondition)
	ErrAlreadyDetected       = fmt.Errorf("%w: elements already detected", failure.ErrPrecondition)
	ErrElementsNotDetected   = fmt.Errorf("%w: elements not detected", failure.ErrPrecondition)
	ErrAlreadyMeasured       = fmt.Errorf("%w: element already measured", failure.ErrPrecondition)
	ErrNotMeasured           = fmt.Errorf("%w: element not measured", failure.ErrPrecondition)
	ErrNothingMeasured       = fmt.Errorf("%w: no measured elements", failure.ErrPrecondition)
	ErrAlreadyDisposed       = fmt.Errorf("%w: session already disposed", failure.ErrPrecondition)
	ErrElementNotDetected    = fmt.Errorf("%w: element not detected", failure.ErrNotFound)
	ErrMissingReferenceShape = fmt.Errorf("%w: reference shape", failure.ErrNotFound)
	ErrInvalidThickness      = fmt.Errorf("%w: element thickness", failure.ErrValidation)
)
