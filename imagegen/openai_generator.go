package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"texgen/raster"
)

// OpenAI endpoint and model defaults.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultImageModel    = openai.CreateImageModelDallE3
)

// OpenAIConfig holds configuration for OpenAIGenerator.
type OpenAIConfig struct {
	// APIKey is required except for local endpoints.
	APIKey string

	// BaseURL is the API endpoint (default: DefaultOpenAIBaseURL). Azure
	// OpenAI resources are detected from the host.
	BaseURL string

	// Model is the image model or Azure deployment (default: dall-e-3).
	Model string

	// HTTPClient is used for API calls and URL downloads (optional).
	HTTPClient *http.Client
}

// OpenAIGenerator generates images with the OpenAI image API or a
// compatible server.
//
// The hosted models only produce a few square sizes. The request size is
// snapped to the nearest supported one and the result is resized back to
// the requested size. Images are requested inline as base64; a URL response
// is downloaded instead.
//
// Thread Safety: OpenAIGenerator is safe for concurrent use.
type OpenAIGenerator struct {
	client     *openai.Client
	downloader *Downloader
	model      string
}

// NewOpenAIGenerator creates a generator from cfg.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	endpoint := strings.TrimSpace(cfg.BaseURL)
	if endpoint == "" {
		endpoint = DefaultOpenAIBaseURL
	}
	if cfg.APIKey == "" && !IsLocalEndpoint(endpoint) {
		return nil, fmt.Errorf("imagegen: API key is required for %s", endpoint)
	}

	var clientConfig openai.ClientConfig
	if IsAzureEndpoint(endpoint) {
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, endpoint)
	} else {
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = endpoint
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultImageModel
	}

	return &OpenAIGenerator{
		client:     openai.NewClientWithConfig(clientConfig),
		downloader: NewDownloader(cfg.HTTPClient),
		model:      model,
	}, nil
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate implements Generator. Steps, Guidance and Seed have no
// equivalent in the image API and are ignored; the result carries no seed.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	width, height := g.apiSize(req.Width, req.Height)
	imgReq := openai.ImageRequest{
		Prompt: composePrompt(req.Prompt, req.NegativePrompt),
		Model:  g.model,
		N:      1,
		Size:   fmt.Sprintf("%dx%d", width, height),
	}
	// gpt-image models always answer inline and reject response_format.
	if !strings.HasPrefix(g.model, "gpt-image") {
		imgReq.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}
	if g.model == openai.CreateImageModelDallE3 {
		imgReq.Style = openai.CreateImageStyleNatural
	}

	resp, err := g.client.CreateImage(ctx, imgReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, fmt.Errorf("openai image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	img, err := g.decode(ctx, resp.Data[0])
	if err != nil {
		return nil, err
	}

	if img.Width != req.Width || img.Height != req.Height {
		img, err = img.Resize(req.Width, req.Height)
		if err != nil {
			return nil, fmt.Errorf("imagegen: resize generated image: %w", err)
		}
	}
	return &Result{Image: img}, nil
}

func (g *OpenAIGenerator) decode(ctx context.Context, data openai.ImageResponseDataInner) (*raster.Image, error) {
	switch {
	case data.B64JSON != "":
		raw, err := base64.StdEncoding.DecodeString(data.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("imagegen: invalid base64 image: %w", err)
		}
		img, err := raster.DecodeBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("imagegen: generated image: %w", err)
		}
		return img, nil
	case data.URL != "":
		return g.downloader.Fetch(ctx, data.URL)
	default:
		return nil, ErrEmptyResponse
	}
}

// apiSize maps the requested size to one the model accepts. Unknown models,
// typically local servers, get the requested size unchanged.
func (g *OpenAIGenerator) apiSize(width, height int) (int, int) {
	supported := supportedSizes(g.model)
	if supported == nil {
		return width, height
	}
	s := SnapSize(max(width, height), supported)
	return s, s
}

func supportedSizes(model string) []int {
	switch {
	case model == openai.CreateImageModelDallE2:
		return []int{256, 512, 1024}
	case model == openai.CreateImageModelDallE3, strings.HasPrefix(model, "gpt-image"):
		return []int{1024}
	}
	return nil
}

// composePrompt folds the negative prompt into the prompt text, since the
// image API has no separate field for it.
func composePrompt(prompt, negative string) string {
	negative = strings.TrimSpace(negative)
	if negative == "" {
		return prompt
	}
	return prompt + ". Avoid: " + negative
}
