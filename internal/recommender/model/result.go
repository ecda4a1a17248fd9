package model

// RecommendationResult is the pipeline's response envelope. On failure Error
// is set, Recommendations is empty and the raw model output (or the parsed
// value, when parsing succeeded) is attached for operator diagnostics.
type RecommendationResult struct {
	Budget          float64      `json:"budget_thb"`
	Currency        string       `json:"currency_provided_to_ai"`
	Recommendations []Build      `json:"recommendations"`
	AnalysisNotes   string       `json:"analysis_notes,omitempty"`
	Error           string       `json:"error,omitempty"`
	RawAIOutput     any          `json:"raw_ai_output_on_error,omitempty"`
	PromptFeedback  string       `json:"prompt_feedback_on_error,omitempty"`
	SourcePrompt    *BudgetQuery `json:"source_prompt_for_saving,omitempty"`
}

// ExplanationResult carries either the explanation text or an error with the
// raw model output attached.
type ExplanationResult struct {
	Explanation    string `json:"explanation,omitempty"`
	Error          string `json:"error,omitempty"`
	RawAIOutput    any    `json:"raw_ai_output,omitempty"`
	PromptFeedback string `json:"prompt_feedback_on_error,omitempty"`
}
