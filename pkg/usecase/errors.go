package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrAssetNotFound = errors.New("asset not found")
	ErrRiskNotFound  = errors.New("risk not found")

	// Input errors
	ErrMissingInput       = errors.New("missing input")
	ErrTooManyAssets      = errors.New("too many assets")
	ErrInvalidMethodology = errors.New("invalid methodology")
)

// Context keys for error values
const (
	AssetIDKey     = "asset_id"
	RiskIDKey      = "risk_id"
	MethodologyKey = "methodology"
	ScenarioKey    = "scenario"
)

// MaxNetworkMapAssets bounds the asset set of a network map
const MaxNetworkMapAssets = 100
