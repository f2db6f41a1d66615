package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const defaultImageMIME = "image/png"

// Bounds for the speculative bare-base64 branch of extractStringContent.
// This is a heuristic guess at a rarely seen provider convention, not an
// upstream contract: blobs outside these bounds are skipped, not errors.
const (
	minBareB64Len = 256
	maxBareB64Len = 10 << 20 // 10 MiB ceiling
)

// normalizeText extracts the content string of the first reply choice's
// message. Absent or non-string content is a failure, there is no silent
// empty-string fallback.
func normalizeText(raw []byte, requestedModel string) (*TextResult, error) {
	var reply struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		if !json.Valid(raw) {
			return nil, &ParseError{Op: "completeText", Err: err}
		}
		return nil, &ShapeError{Op: "completeText", Summary: fmt.Sprintf("unexpected reply structure: %v", err)}
	}
	if len(reply.Choices) == 0 {
		return nil, &ShapeError{Op: "completeText", Summary: "missing content, reply has no choices"}
	}
	var content string
	if err := json.Unmarshal(reply.Choices[0].Message.Content, &content); err != nil || content == "" {
		kind, length := describeJSON(reply.Choices[0].Message.Content)
		return nil, &ShapeError{
			Op:      "completeText",
			Summary: fmt.Sprintf("missing content, first choice content is %v (len %v)", kind, length),
		}
	}
	model := reply.Model
	if model == "" {
		model = requestedModel
	}
	return &TextResult{Text: content, Model: model, Raw: raw}, nil
}

// imageReply is the tolerant parse of a multimodal generation reply. Fields
// which vary by provider stay raw until an extractor inspects them.
type imageReply struct {
	Model   string        `json:"model"`
	Choices []imageChoice `json:"choices"`
	Data    []imageDatum  `json:"data"`
}

type imageChoice struct {
	Message imageMessage `json:"message"`
}

type imageMessage struct {
	Content  json.RawMessage `json:"content"`
	Images   []imageEntry    `json:"images"`
	ImageURL json.RawMessage `json:"image_url"`
}

type imageEntry struct {
	Type     string          `json:"type"`
	ImageURL json.RawMessage `json:"image_url"`
}

type imageDatum struct {
	B64JSON string `json:"b64_json"`
	URL     string `json:"url"`
}

type contentPart struct {
	Type     string          `json:"type"`
	ImageURL json.RawMessage `json:"image_url"`
	Data     string          `json:"data"`
}

type imagePayload struct {
	data []byte
	mime string
}

// An extractor returns (nil, nil) when its shape doesn't apply to the
// reply, a payload on success, and an error when the shape applied but the
// payload couldn't be decoded or fetched.
type imageExtractor struct {
	name string
	fn   func(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error)
}

// imageExtractors run in order, first success wins. The order encodes which
// provider conventions are preferred when a reply could be parsed multiple
// ways, so it must not be reordered.
var imageExtractors = []imageExtractor{
	{"typed-images", extractTypedImages},
	{"multipart-content", extractMultipartContent},
	{"string-content", extractStringContent},
	{"message-image-url", extractMessageImageURL},
	{"top-level-data", extractTopLevelData},
}

func (c *Client) normalizeImage(ctx context.Context, raw []byte, requestedModel string) (*ImageResult, error) {
	var reply imageReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		if !json.Valid(raw) {
			return nil, &ParseError{Op: "generateImage", Err: err}
		}
		return nil, &ShapeError{Op: "generateImage", Summary: fmt.Sprintf("unexpected reply structure: %v", err)}
	}
	for _, ex := range imageExtractors {
		payload, err := ex.fn(ctx, c, &reply)
		if err != nil {
			// A failed fetch keeps its upstream status; anything else is
			// an undecodable payload inside a shape that did apply
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return nil, fmt.Errorf("image extractor '%v' failed: %w", ex.name, err)
			}
			return nil, &ShapeError{
				Op:      "generateImage",
				Summary: fmt.Sprintf("image extractor '%v' failed: %v", ex.name, err),
			}
		}
		if payload == nil {
			continue
		}
		model := reply.Model
		if model == "" {
			model = requestedModel
		}
		return &ImageResult{Data: payload.data, MIME: payload.mime, Model: model}, nil
	}
	return nil, &ShapeError{Op: "generateImage", Summary: "no extractor matched, " + imageShapeSummary(&reply)}
}

// urlFromField reads an image-URL field which providers send either as a
// plain string or as an object carrying a url key.
func urlFromField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

// decodeDataURL decodes a base64 data-URL. The MIME type is the declared
// image subtype, falling back to a generic image type when the header
// doesn't parse as one.
func decodeDataURL(s string) (*imagePayload, error) {
	header, payload, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !found {
		return nil, fmt.Errorf("malformed data-URL, no comma separator")
	}
	mime := defaultImageMIME
	if m, _, _ := strings.Cut(header, ";"); strings.HasPrefix(m, "image/") && len(m) > len("image/") {
		mime = m
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data-URL base64: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("data-URL decoded to zero bytes")
	}
	return &imagePayload{data: data, mime: mime}, nil
}

// resolveImageRef turns a located URL-ish string into image bytes: data-URLs
// decode in place, http(s) references get fetched. Unknown schemes don't
// apply and defer to the next candidate.
func resolveImageRef(ctx context.Context, c *Client, url string) (*imagePayload, error) {
	switch {
	case url == "":
		return nil, nil
	case strings.HasPrefix(url, "data:"):
		return decodeDataURL(url)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		data, mime, err := c.fetchImage(ctx, url)
		if err != nil {
			return nil, err
		}
		return &imagePayload{data: data, mime: mime}, nil
	default:
		return nil, nil
	}
}

// Shape 1: a message-level array of typed image entries.
func extractTypedImages(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error) {
	for _, choice := range reply.Choices {
		for _, entry := range choice.Message.Images {
			if entry.Type != "image_url" {
				continue
			}
			payload, err := resolveImageRef(ctx, c, urlFromField(entry.ImageURL))
			if err != nil {
				return nil, err
			}
			if payload != nil {
				return payload, nil
			}
		}
	}
	return nil, nil
}

// Shape 2: multipart message content, either an image-URL sub-object or a
// directly embedded base64 image string per part.
func extractMultipartContent(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error) {
	for _, choice := range reply.Choices {
		var parts []contentPart
		if err := json.Unmarshal(choice.Message.Content, &parts); err != nil {
			continue
		}
		for _, part := range parts {
			if url := urlFromField(part.ImageURL); url != "" {
				payload, err := resolveImageRef(ctx, c, url)
				if err != nil {
					return nil, err
				}
				if payload != nil {
					return payload, nil
				}
			}
			if part.Data != "" && strings.Contains(strings.ToLower(part.Type), "image") {
				data, err := base64.StdEncoding.DecodeString(part.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode embedded base64 part: %w", err)
				}
				return &imagePayload{data: data, mime: defaultImageMIME}, nil
			}
		}
	}
	return nil, nil
}

// Shape 3: plain string message content. Tested against three encodings in
// order: http(s) URL, data-URL, then a speculative bare base64 decode. Only
// the speculative branch swallows its failures, falling through to the next
// candidate instead of failing the call.
func extractStringContent(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error) {
	for _, choice := range reply.Choices {
		var s string
		if err := json.Unmarshal(choice.Message.Content, &s); err != nil || s == "" {
			continue
		}
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return resolveImageRef(ctx, c, s)
		}
		if strings.HasPrefix(s, "data:") {
			return decodeDataURL(s)
		}
		trimmed := strings.TrimSpace(s)
		if len(trimmed) < minBareB64Len || len(trimmed) > maxBareB64Len {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil || len(data) == 0 || len(data) > maxBareB64Len {
			// Heuristic miss, not an error: this candidate doesn't apply
			continue
		}
		return &imagePayload{data: data, mime: defaultImageMIME}, nil
	}
	return nil, nil
}

// Shape 4: a message-level image_url field, string or nested object.
func extractMessageImageURL(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error) {
	for _, choice := range reply.Choices {
		payload, err := resolveImageRef(ctx, c, urlFromField(choice.Message.ImageURL))
		if err != nil {
			return nil, err
		}
		if payload != nil {
			return payload, nil
		}
	}
	return nil, nil
}

// Shape 5: a top-level data array with inline base64 or URL entries,
// mirroring the images-endpoint convention some providers answer with.
func extractTopLevelData(ctx context.Context, c *Client, reply *imageReply) (*imagePayload, error) {
	for _, datum := range reply.Data {
		if datum.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(datum.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("failed to decode b64_json entry: %w", err)
			}
			return &imagePayload{data: data, mime: defaultImageMIME}, nil
		}
		if datum.URL != "" {
			payload, err := resolveImageRef(ctx, c, datum.URL)
			if err != nil {
				return nil, err
			}
			if payload != nil {
				return payload, nil
			}
		}
	}
	return nil, nil
}

// imageShapeSummary describes the reply's top level shape for diagnostics,
// without dumping the possibly large payload.
func imageShapeSummary(r *imageReply) string {
	if len(r.Choices) == 0 && len(r.Data) == 0 {
		return "no choices and no data entries"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "choices=%v", len(r.Choices))
	if len(r.Choices) > 0 {
		msg := r.Choices[0].Message
		kind, length := describeJSON(msg.Content)
		fmt.Fprintf(&sb, " content=%v(len %v) images=%v image_url=%v",
			kind, length, len(msg.Images), len(msg.ImageURL) > 0)
	}
	fmt.Fprintf(&sb, " data=%v", len(r.Data))
	return sb.String()
}

func describeJSON(raw json.RawMessage) (kind string, length int) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "absent", 0
	}
	switch {
	case trimmed[0] == '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return "string", len(s)
		}
		return "string", len(trimmed)
	case trimmed[0] == '[':
		return "array", len(trimmed)
	case trimmed[0] == '{':
		return "object", len(trimmed)
	case bytes.Equal(trimmed, []byte("null")):
		return "null", 0
	default:
		return "scalar", len(trimmed)
	}
}
