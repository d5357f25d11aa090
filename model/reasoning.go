package model

import "time"

// ReasoningStepType identifies a step in a reasoning chain
type ReasoningStepType string

const (
	ReasoningStepParse  ReasoningStepType = "parse"
	ReasoningStepSearch ReasoningStepType = "search"
	ReasoningStepFilter ReasoningStepType = "filter"
	ReasoningStepInfer  ReasoningStepType = "infer"
)

// ReasoningStep is one step of an auditable query trace. Confidence values
// are fixed per step type; they are explainability weights, not probabilities.
type ReasoningStep struct {
	Type        ReasoningStepType `json:"step_type"`
	Description string            `json:"description"`
	Input       string            `json:"input"`
	Output      string            `json:"output"`
	Confidence  float64           `json:"confidence"`
}

// ReasoningChain is an ordered, human-auditable trace of how a query was
// parsed, decomposed, searched, filtered and connected via the graph
type ReasoningChain struct {
	Query     string          `json:"query"`
	SubQueries []string       `json:"sub_queries,omitempty"`
	Steps     []ReasoningStep `json:"steps"`
	CreatedAt time.Time       `json:"created_at"`
}
