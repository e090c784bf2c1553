package domain

// TypeMatch is the outcome of running the keyword classifier over raw text.
// Definition is nil exactly when TypeID is TypeUnknown.
type TypeMatch struct {
	TypeID     string
	Confidence float64
	// Score is the raw keyword hit count. The count strategy picks its
	// winner by this value; the ratio strategy fills it for diagnostics.
	Score      int
	Definition *TypeDefinition
}

// AssistAnswer is a well-formed response from the external classification
// provider. Anything that fails to parse into this shape is treated as no
// answer at all.
type AssistAnswer struct {
	Type       string            `json:"type"`
	Confidence float64           `json:"confidence"`
	Data       map[string]string `json:"data"`
}
