package api

// GenerateRequest is the POST /generate body. Optional fields are pointers
// so unset can be distinguished from a zero value.
type GenerateRequest struct {
	Prompt       string   `json:"prompt"`
	MaxNewTokens *int     `json:"max_new_tokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// GenerateResponse is the completed generation returned to the client.
type GenerateResponse struct {
	Prompt          string `json:"prompt"`
	GeneratedText   string `json:"generated_text"`
	TokensGenerated int    `json:"tokens_generated"`
}

// HealthResponse reflects whether the service is ready to decode.
type HealthResponse struct {
	Status          string `json:"status"`
	ModelLoaded     bool   `json:"model_loaded"`
	TokenizerLoaded bool   `json:"tokenizer_loaded"`
	CacheEntries    int    `json:"cache_entries"`
	CacheCapacity   int    `json:"cache_capacity"`
}

// ServiceInfo is the static metadata served at the root path.
type ServiceInfo struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// APIError is the error envelope for all non-2xx responses.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
