package openrouter

import (
	"context"
	"fmt"
	"strings"
)

// Supported pixel size presets. Width+height pairs that aren't square get
// mapped onto one of the two non-square presets, favoring the longer axis.
const (
	SizeSquare    = "1024x1024"
	SizeLandscape = "1344x768"
	SizePortrait  = "768x1344"
)

// ImageRequest asks the model for one image. Width/Height are only
// consulted when Size is unset; see resolveSize for the precedence.
type ImageRequest struct {
	System   string
	Prompt   string
	Negative string
	Size     string
	Width    int
	Height   int
	Seed     *int
	Steps    *int
	Guidance *float64
	Model    string
}

// ImageResult is decoded binary image data tagged with a MIME type, plus
// the model identifier that was used.
type ImageResult struct {
	Data  []byte
	MIME  string
	Model string
}

// resolveSize picks the target pixel size: explicit named size beats
// explicit width+height, which beats the fixed default. The preset names
// square/landscape/portrait map onto their pixel dimensions.
func resolveSize(req ImageRequest) string {
	switch s := strings.TrimSpace(req.Size); s {
	case "square":
		return SizeSquare
	case "landscape":
		return SizeLandscape
	case "portrait":
		return SizePortrait
	default:
		if s != "" {
			return s
		}
	}
	if req.Width > 0 && req.Height > 0 {
		switch {
		case req.Width == req.Height:
			return fmt.Sprintf("%vx%v", req.Width, req.Height)
		case req.Width > req.Height:
			return SizeLandscape
		default:
			return SizePortrait
		}
	}
	return SizeSquare
}

// composePrompt appends the avoid-clause only when a negative prompt was
// actually supplied.
func composePrompt(req ImageRequest) string {
	if req.Negative == "" {
		return req.Prompt
	}
	return fmt.Sprintf("%v\n\nAvoid: %v", req.Prompt, req.Negative)
}

// openaiImageFamily matches the model families which understand the
// quality/style extras. Everything else gets the plain request.
func isOpenAIImageFamily(model string) bool {
	return strings.Contains(model, "dall-e") || strings.Contains(model, "gpt-image")
}

func applyProviderExtras(wireReq *chatRequest, conf Config) {
	if !isOpenAIImageFamily(wireReq.Model) {
		return
	}
	wireReq.Quality = conf.ImageQuality
	wireReq.Style = conf.ImageStyle
}

// GenerateImage sends one chat-style multimodal generation request and
// normalizes the reply into decoded image bytes. The reply shape varies by
// upstream provider, see normalizeImage for the precedence of known shapes.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	model, err := resolveModel(req.Model, c.conf.ImageModel)
	if err != nil {
		return nil, err
	}
	msgs := make([]chatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: composePrompt(req)})

	wireReq := chatRequest{
		Model:    model,
		Messages: msgs,
		// Tells the upstream this is a dual image+text reply
		Modalities: []string{"image", "text"},
		Size:       resolveSize(req),
		Seed:       req.Seed,
		Steps:      req.Steps,
		Guidance:   req.Guidance,
	}
	applyProviderExtras(&wireReq, c.conf)

	raw, err := c.postJSON(ctx, "/chat/completions", wireReq)
	if err != nil {
		return nil, err
	}
	return c.normalizeImage(ctx, raw, model)
}
