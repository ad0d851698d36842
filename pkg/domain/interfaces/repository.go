package interfaces

// Repository defines the interface for data access used by the analytics core
type Repository interface {
	Asset() AssetRepository
	Relationship() RelationshipRepository
	Risk() RiskRepository
	Assessment() AssessmentRepository

	Close() error
}
