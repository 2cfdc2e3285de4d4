package models

import (
	"fmt"
	"strings"
)

// ModelSpec selects the forecasting model family. Each family maps to a fixed
// low-order (p, q) pair; the differencing order comes from the SeriesKind of
// the input, not from the spec.
type ModelSpec string

const (
	// ModelNone disables forecasting; the engine passes the series through.
	ModelNone ModelSpec = "none"
	// ModelAR is an autoregressive model of order 2.
	ModelAR ModelSpec = "AR"
	// ModelMA is a moving-average model of order 2.
	ModelMA ModelSpec = "MA"
	// ModelARMA combines both, order (2, 2).
	ModelARMA ModelSpec = "ARMA"
)

// ParseModelSpec maps a user-supplied model name onto a ModelSpec,
// case-insensitively. Unknown names are an InvalidSelection.
func ParseModelSpec(s string) (ModelSpec, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return ModelNone, nil
	case "AR":
		return ModelAR, nil
	case "MA":
		return ModelMA, nil
	case "ARMA":
		return ModelARMA, nil
	}
	return "", fmt.Errorf("unknown model %q: %w", s, ErrInvalidSelection)
}

// Orders returns the autoregressive and moving-average orders for the spec.
func (m ModelSpec) Orders() (p int, q int) {
	switch m {
	case ModelAR:
		return 2, 0
	case ModelMA:
		return 0, 2
	case ModelARMA:
		return 2, 2
	default:
		return 0, 0
	}
}

// ForecastResult is the stitched output of the forecast engine: the full
// historical series followed by Horizon projected points. Series carries the
// same kind as the engine input.
type ForecastResult struct {
	Series ForecastSeries `json:"series"`
	// Model is the model family the forecast was produced with.
	Model ModelSpec `json:"model"`
	// Horizon is the number of projected business days at the end of Series.
	Horizon int `json:"horizon"`
}

// ForecastSeries aliases TimeSeries so the result shape stays decoupled from
// any estimation library's return types.
type ForecastSeries = TimeSeries

// ForecastStart returns the index of the first projected point, equal to the
// historical length.
func (r ForecastResult) ForecastStart() int {
	return r.Series.Len() - r.Horizon
}

// TickerListing is one entry of the most-active listing: a display name and
// the ticker symbol it stands for.
type TickerListing struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
