package predictivecompliance

type Input struct {
	InstitutionData   string `json:"institutionData"`
	AccreditationType string `json:"accreditationType"`
}

// Output is free-text: a gap report and the matching suggestions.
type Output struct {
	ComplianceGaps string `json:"complianceGaps"`
	Suggestions    string `json:"suggestions"`
}
