package documentverification

// Input is a single document checked against accreditation criteria.
type Input struct {
	DocumentDataURI string `json:"documentDataUri"`
	InstitutionType string `json:"institutionType"`
	Criteria        string `json:"criteria"`
}

type Output struct {
	IsEligible      bool    `json:"isEligible"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Explanation     string  `json:"explanation"`
}
