package frauddetection

type Input struct {
	DocumentDataURI string `json:"documentDataUri"`
}

type Output struct {
	IsFraudulent    bool    `json:"isFraudulent"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Reasoning       string  `json:"reasoning"`
}
