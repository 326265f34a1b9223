package entity

// Wire types of the Gemini generateContent REST endpoint, limited to the fields
// the relay reads or writes.

type GeminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiFileSearch struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type GeminiTool struct {
	FileSearch *GeminiFileSearch `json:"fileSearch,omitempty"`
}

type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type GeminiGenerateContentRequest struct {
	Contents          []GeminiContent        `json:"contents"`
	SystemInstruction *GeminiContent         `json:"systemInstruction,omitempty"`
	Tools             []GeminiTool           `json:"tools,omitempty"`
	GenerationConfig  GeminiGenerationConfig `json:"generationConfig"`
}

type GeminiRetrievedContext struct {
	URI             string `json:"uri,omitempty"`
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	FileSearchStore string `json:"fileSearchStore,omitempty"`
}

type GeminiGroundingChunk struct {
	RetrievedContext *GeminiRetrievedContext `json:"retrievedContext,omitempty"`
}

type GeminiGroundingSupport struct {
	GroundingChunkIndices []int     `json:"groundingChunkIndices,omitempty"`
	ConfidenceScores      []float64 `json:"confidenceScores,omitempty"`
}

type GeminiGroundingMetadata struct {
	GroundingChunks   []GeminiGroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GeminiGroundingSupport `json:"groundingSupports,omitempty"`
}

type GeminiCandidate struct {
	Content           *GeminiContent           `json:"content,omitempty"`
	FinishReason      string                   `json:"finishReason,omitempty"`
	GroundingMetadata *GeminiGroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GeminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GeminiGenerateContentResponse struct {
	Candidates     []GeminiCandidate     `json:"candidates"`
	PromptFeedback *GeminiPromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string                `json:"modelVersion,omitempty"`
}
