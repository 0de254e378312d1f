package documentsuggestion

type Input struct {
	InstitutionData   string `json:"institutionData"`
	AccreditationType string `json:"accreditationType"`
}

// Output keeps the model's ordering of SuggestedDocuments.
type Output struct {
	SuggestedDocuments []string `json:"suggestedDocuments"`
}
