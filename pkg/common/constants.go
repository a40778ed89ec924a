package common

const (
	RouteAPIGroup = "/api"
	RouteAnalyze  = "/analyze"
	RouteHealthz  = "/healthz"

	// Messages returned to API callers. Causes are only logged.
	MessageMissingCharts  = "Missing required charts"
	MessageAnalysisFailed = "Failed to analyze charts"

	// Messages shown by the upload form.
	MessageUploadRequired = "Please upload all required charts"
	MessageClientFailure  = "Error: Failed to analyze charts. Please try again."

	AIProviderAnthropic  = "anthropic"
	AIProviderGemini     = "gemini"
	AIProviderOpenRouter = "openrouter"
)
