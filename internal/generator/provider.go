package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/leonardo"
)

// ImageSize is the edge length requested from the image service.
const ImageSize = 512

// ErrUnavailable reports that a provider has no remote path configured.
var ErrUnavailable = errors.New("generator: remote provider unavailable")

// Image is a generated element visual.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Provider produces a new element image. Any error means no image.
type Provider interface {
	Generate(ctx context.Context, hint Category) (Image, error)
}

// Ensure implementations satisfy Provider at compile time.
var (
	_ Provider = (*Remote)(nil)
	_ Provider = (*Endpoint)(nil)
	_ Provider = Unavailable{}
)

// Remote generates images through the image service client.
type Remote struct {
	client  *leonardo.Client
	modelID string
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRemote wraps client. A nil client is allowed and yields
// leonardo.ErrNoCredentials from every call.
func NewRemote(client *leonardo.Client, modelID string, logger *zap.Logger, rng *rand.Rand) *Remote {
	if modelID == "" {
		modelID = leonardo.DefaultModelID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{client: client, modelID: modelID, logger: logger, rng: rng}
}

// Available reports whether credentials were configured.
func (r *Remote) Available() bool {
	return r != nil && r.client != nil
}

// Generate implements Provider.
func (r *Remote) Generate(ctx context.Context, hint Category) (Image, error) {
	if !r.Available() {
		return Image{}, leonardo.ErrNoCredentials
	}

	r.mu.Lock()
	category := Pick(hint, r.rng)
	r.mu.Unlock()

	req := leonardo.GenerationRequest{
		Prompt:         Prompt(category),
		NegativePrompt: NegativePrompt,
		ModelID:        r.modelID,
		Width:          ImageSize,
		Height:         ImageSize,
		NumImages:      1,
		GuidanceScale:  7,
		SDVersion:      "SDXL_1_0",
		PresetStyle:    "CINEMATIC",
	}
	img, err := r.client.Generate(ctx, req)
	if err != nil {
		return Image{}, fmt.Errorf("generate %s: %w", category, err)
	}
	r.logger.Info("image generated",
		zap.String("category", string(category)),
		zap.String("image_id", img.ID),
	)
	return Image{URL: img.URL, Width: ImageSize, Height: ImageSize}, nil
}

// Unavailable is a Provider that never has an image.
type Unavailable struct{}

// Generate implements Provider.
func (Unavailable) Generate(context.Context, Category) (Image, error) {
	return Image{}, ErrUnavailable
}
