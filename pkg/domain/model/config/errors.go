package config

import "errors"

// ErrInvalidCalibration is returned when an AnalyticsConfig violates an invariant
var ErrInvalidCalibration = errors.New("invalid analytics calibration")
