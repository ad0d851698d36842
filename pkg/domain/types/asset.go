package types

import "fmt"

// AssetType represents the kind of an asset
type AssetType string

const (
	AssetTypeServer        AssetType = "server"
	AssetTypeDatabase      AssetType = "database"
	AssetTypeApplication   AssetType = "application"
	AssetTypeCloudService  AssetType = "cloud_service"
	AssetTypeNetworkDevice AssetType = "network_device"
	AssetTypeStorage       AssetType = "storage"
	AssetTypeOther         AssetType = "other"
)

// AllAssetTypes returns all valid asset types
func AllAssetTypes() []AssetType {
	return []AssetType{
		AssetTypeServer,
		AssetTypeDatabase,
		AssetTypeApplication,
		AssetTypeCloudService,
		AssetTypeNetworkDevice,
		AssetTypeStorage,
		AssetTypeOther,
	}
}

// IsValid checks if the asset type is valid
func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeServer,
		AssetTypeDatabase,
		AssetTypeApplication,
		AssetTypeCloudService,
		AssetTypeNetworkDevice,
		AssetTypeStorage,
		AssetTypeOther:
		return true
	default:
		return false
	}
}

// IsService reports whether assets of this type expose a user-facing service
func (t AssetType) IsService() bool {
	return t == AssetTypeApplication || t == AssetTypeCloudService
}

func (t AssetType) String() string {
	return string(t)
}

// ParseAssetType parses a string into an AssetType
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid asset type: %s", s)
	}
	return t, nil
}

// Criticality is the business criticality tier of an asset
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// AllCriticalities returns all valid criticality tiers from highest to lowest
func AllCriticalities() []Criticality {
	return []Criticality{
		CriticalityCritical,
		CriticalityHigh,
		CriticalityMedium,
		CriticalityLow,
	}
}

// IsValid checks if the criticality is valid
func (c Criticality) IsValid() bool {
	switch c {
	case CriticalityCritical,
		CriticalityHigh,
		CriticalityMedium,
		CriticalityLow:
		return true
	default:
		return false
	}
}

func (c Criticality) String() string {
	return string(c)
}

// ParseCriticality parses a string into a Criticality
func ParseCriticality(s string) (Criticality, error) {
	c := Criticality(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid criticality: %s", s)
	}
	return c, nil
}

// Environment is the deployment environment of an asset
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
)

// AllEnvironments returns all valid environments
func AllEnvironments() []Environment {
	return []Environment{
		EnvironmentProduction,
		EnvironmentStaging,
		EnvironmentDevelopment,
	}
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentProduction,
		EnvironmentStaging,
		EnvironmentDevelopment:
		return true
	default:
		return false
	}
}

func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment parses a string into an Environment
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid environment: %s", s)
	}
	return e, nil
}

// DataClassification is the sensitivity label of data held by an asset
type DataClassification string

const (
	DataClassificationPublic       DataClassification = "public"
	DataClassificationInternal     DataClassification = "internal"
	DataClassificationConfidential DataClassification = "confidential"
	DataClassificationRestricted   DataClassification = "restricted"
)

// IsValid checks if the classification is valid. Empty means unclassified and is accepted.
func (d DataClassification) IsValid() bool {
	switch d {
	case "",
		DataClassificationPublic,
		DataClassificationInternal,
		DataClassificationConfidential,
		DataClassificationRestricted:
		return true
	default:
		return false
	}
}

func (d DataClassification) String() string {
	return string(d)
}
