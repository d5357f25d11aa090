package model

// EntityType is the closed set of entity kinds the pattern extractor can emit
type EntityType string

const (
	EntityTypeDate         EntityType = "date"
	EntityTypeTime         EntityType = "time"
	EntityTypeDateTime     EntityType = "datetime"
	EntityTypeMoney        EntityType = "money"
	EntityTypePercentage   EntityType = "percentage"
	EntityTypeEmail        EntityType = "email"
	EntityTypePhone        EntityType = "phone"
	EntityTypeURL          EntityType = "url"
	EntityTypeNumber       EntityType = "number"
	EntityTypeCard         EntityType = "card"
	EntityTypeAccount      EntityType = "account"
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeLocation     EntityType = "location"
	EntityTypeDuration     EntityType = "duration"
	EntityTypeOrdinal      EntityType = "ordinal"
	EntityTypeKeyword      EntityType = "keyword"
)

// Entity represents a typed, positioned span of text recognized by a pattern.
// Normalized holds the parsed form (float64 for money/percentage/number,
// time.Time for dates) and is nil when normalization failed or does not apply.
type Entity struct {
	Type       EntityType  `json:"entity_type"`
	Value      string      `json:"value"`
	Normalized interface{} `json:"normalized,omitempty"`
	Confidence float64     `json:"confidence"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Context    string      `json:"context"`
}

// ExtractionSummary aggregates entity counts and derived signals for a text
type ExtractionSummary struct {
	Counts          map[EntityType]int `json:"counts"`
	HasTemporalInfo bool               `json:"has_temporal_info"`
	HasMonetaryInfo bool               `json:"has_monetary_info"`
	HasContactInfo  bool               `json:"has_contact_info"`
}

// ExtractionResult is the full output of one extraction call
type ExtractionResult struct {
	Entities []Entity          `json:"entities"`
	Keywords []string          `json:"keywords"`
	Summary  ExtractionSummary `json:"summary"`
}
