package types

import "fmt"

// RelationshipType is the kind of a directed edge between two assets
type RelationshipType string

const (
	RelationshipDependsOn         RelationshipType = "depends_on"
	RelationshipHostedOn          RelationshipType = "hosted_on"
	RelationshipLoadBalancedBy    RelationshipType = "load_balanced_by"
	RelationshipProcessesDataFrom RelationshipType = "processes_data_from"
	RelationshipCommunicatesWith  RelationshipType = "communicates_with"
	RelationshipReplicatesTo      RelationshipType = "replicates_to"
	RelationshipBacksUpTo         RelationshipType = "backs_up_to"
	RelationshipAuthenticatesVia  RelationshipType = "authenticates_via"
)

// AllRelationshipTypes returns all valid relationship types
func AllRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelationshipDependsOn,
		RelationshipHostedOn,
		RelationshipLoadBalancedBy,
		RelationshipProcessesDataFrom,
		RelationshipCommunicatesWith,
		RelationshipReplicatesTo,
		RelationshipBacksUpTo,
		RelationshipAuthenticatesVia,
	}
}

// IsValid checks if the relationship type is valid
func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipDependsOn,
		RelationshipHostedOn,
		RelationshipLoadBalancedBy,
		RelationshipProcessesDataFrom,
		RelationshipCommunicatesWith,
		RelationshipReplicatesTo,
		RelationshipBacksUpTo,
		RelationshipAuthenticatesVia:
		return true
	default:
		return false
	}
}

func (t RelationshipType) String() string {
	return string(t)
}

// ParseRelationshipType parses a string into a RelationshipType
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid relationship type: %s", s)
	}
	return t, nil
}

// RelationshipStrength is the ordinal tightness of a dependency
type RelationshipStrength string

const (
	StrengthWeak     RelationshipStrength = "weak"
	StrengthModerate RelationshipStrength = "moderate"
	StrengthStrong   RelationshipStrength = "strong"
	StrengthCritical RelationshipStrength = "critical"
)

// AllRelationshipStrengths returns all strengths in ascending order
func AllRelationshipStrengths() []RelationshipStrength {
	return []RelationshipStrength{
		StrengthWeak,
		StrengthModerate,
		StrengthStrong,
		StrengthCritical,
	}
}

// IsValid checks if the relationship strength is valid
func (s RelationshipStrength) IsValid() bool {
	switch s {
	case StrengthWeak,
		StrengthModerate,
		StrengthStrong,
		StrengthCritical:
		return true
	default:
		return false
	}
}

func (s RelationshipStrength) String() string {
	return string(s)
}

// ParseRelationshipStrength parses a string into a RelationshipStrength
func ParseRelationshipStrength(s string) (RelationshipStrength, error) {
	v := RelationshipStrength(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid relationship strength: %s", s)
	}
	return v, nil
}
