package models

import "errors"

// Error kinds surfaced by the pipeline. All of them are recoverable at the
// request boundary: a failed run answers one request and never takes the
// process down. Callers classify with errors.Is.
var (
	// ErrDataUnavailable means the data source returned nothing usable for
	// the ticker (unknown symbol, network failure, delisted).
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNumericFault means a transform hit an undefined operation, such as
	// a log-return over a zero price.
	ErrNumericFault = errors.New("numeric fault")

	// ErrInsufficientData means the series holds fewer observations than a
	// model fit requires.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrFitFailed means model estimation did not converge or the data was
	// degenerate. The user-selected order is never retried with different
	// parameters.
	ErrFitFailed = errors.New("model fit failed")

	// ErrInvalidSelection means the request carries nothing actionable yet,
	// such as a missing ticker. It is a "nothing to do" signal, not a fault.
	ErrInvalidSelection = errors.New("invalid selection")
)
