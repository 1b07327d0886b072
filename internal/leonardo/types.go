package leonardo

// GenerationStatus is the lifecycle state reported for a generation.
type GenerationStatus string

const (
	StatusPending  GenerationStatus = "PENDING"
	StatusComplete GenerationStatus = "COMPLETE"
	StatusFailed   GenerationStatus = "FAILED"
)

// GenerationRequest is the body of POST /generations.
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	ModelID        string `json:"modelId"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	NumImages      int    `json:"num_images"`
	GuidanceScale  int    `json:"guidance_scale"`
	SDVersion      string `json:"sd_version,omitempty"`
	PresetStyle    string `json:"presetStyle,omitempty"`
}

// GeneratedImage is one produced image.
type GeneratedImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Generation mirrors generations_by_pk.
type Generation struct {
	ID              string           `json:"id"`
	Status          GenerationStatus `json:"status"`
	GeneratedImages []GeneratedImage `json:"generated_images"`
}

type createGenerationResponse struct {
	SDGenerationJob struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
}

type generationResponse struct {
	Generation Generation `json:"generations_by_pk"`
}
