package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestResolveSizePrecedence(t *testing.T) {
	testCases := []struct {
		desc string
		req  ImageRequest
		want string
	}{
		{desc: "named size wins", req: ImageRequest{Size: "512x512", Width: 9999, Height: 1}, want: "512x512"},
		{desc: "square preset name", req: ImageRequest{Size: "square"}, want: SizeSquare},
		{desc: "landscape preset name", req: ImageRequest{Size: "landscape"}, want: SizeLandscape},
		{desc: "portrait preset name", req: ImageRequest{Size: "portrait"}, want: SizePortrait},
		{desc: "preset name beats dimensions", req: ImageRequest{Size: "portrait", Width: 100, Height: 100}, want: SizePortrait},
		{desc: "square dimensions", req: ImageRequest{Width: 800, Height: 800}, want: "800x800"},
		{desc: "landscape favors width", req: ImageRequest{Width: 1920, Height: 1080}, want: SizeLandscape},
		{desc: "portrait favors height", req: ImageRequest{Width: 600, Height: 900}, want: SizePortrait},
		{desc: "default when nothing set", req: ImageRequest{}, want: SizeSquare},
		{desc: "partial dimensions fall back to default", req: ImageRequest{Width: 1024}, want: SizeSquare},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			testboil.FailTestIfDiff(t, resolveSize(tC.req), tC.want)
		})
	}
}

func TestComposePromptAvoidClause(t *testing.T) {
	testboil.FailTestIfDiff(t, composePrompt(ImageRequest{Prompt: "a cat"}), "a cat")
	testboil.FailTestIfDiff(t,
		composePrompt(ImageRequest{Prompt: "a cat", Negative: "dogs"}),
		"a cat\n\nAvoid: dogs")
}

func TestGenerateImageRequestShape(t *testing.T) {
	var got chatRequest
	conf := validConf()
	conf.ImageQuality = "hd"
	conf.ImageStyle = "vivid"
	c, _ := New(conf, WithHTTPClient(newTestClient(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(200, `{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,QQ=="}}]}}]}`), nil
	})))
	seed := 7
	_, err := c.GenerateImage(context.Background(), ImageRequest{
		System: "render",
		Prompt: "a cat",
		Seed:   &seed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, got.Model, "test/image-model")
	if len(got.Modalities) != 2 || got.Modalities[0] != "image" || got.Modalities[1] != "text" {
		t.Errorf("expected dual image+text modalities, got: %v", got.Modalities)
	}
	testboil.FailTestIfDiff(t, got.Size, SizeSquare)
	if got.Seed == nil || *got.Seed != 7 {
		t.Errorf("expected seed 7, got: %+v", got.Seed)
	}
	// test/image-model is not an openai image family model, so the extras
	// must stay off the wire
	testboil.FailTestIfDiff(t, got.Quality, "")
	testboil.FailTestIfDiff(t, got.Style, "")
	if len(got.Messages) != 2 {
		t.Fatalf("expected system + user turn, got: %+v", got.Messages)
	}
	testboil.FailTestIfDiff(t, got.Messages[0].Content, "render")
	testboil.FailTestIfDiff(t, got.Messages[1].Content, "a cat")
}

func TestGenerateImageProviderExtrasForKnownFamily(t *testing.T) {
	var got chatRequest
	conf := validConf()
	conf.ImageQuality = "hd"
	conf.ImageStyle = "natural"
	c, _ := New(conf, WithHTTPClient(newTestClient(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &got)
		return jsonResponse(200, `{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,QQ=="}}]}}]}`), nil
	})))
	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", Model: "openai/gpt-image-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, got.Quality, "hd")
	testboil.FailTestIfDiff(t, got.Style, "natural")
}

func TestGenerateImageDataURLScenario(t *testing.T) {
	c, _ := New(validConf(), WithHTTPClient(newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,QQ=="}}]}}],"model":"m2"}`), nil
	})))
	res, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "A")
	testboil.FailTestIfDiff(t, res.MIME, "image/png")
	testboil.FailTestIfDiff(t, res.Model, "m2")
}

func TestGenerateImageNoSystemTurnWhenUnset(t *testing.T) {
	var got chatRequest
	c, _ := New(validConf(), WithHTTPClient(newTestClient(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &got)
		return jsonResponse(200, `{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,QQ=="}}]}}]}`), nil
	})))
	if _, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("expected a single user turn, got: %+v", got.Messages)
	}
}

func TestIsOpenAIImageFamily(t *testing.T) {
	testCases := []struct {
		model string
		want  bool
	}{
		{"openai/dall-e-3", true},
		{"openai/gpt-image-1", true},
		{"google/gemini-2.5-flash-image", false},
		{"stability/sdxl", false},
	}
	for _, tC := range testCases {
		if got := isOpenAIImageFamily(tC.model); got != tC.want {
			t.Errorf("isOpenAIImageFamily(%q) = %v, want %v", tC.model, got, tC.want)
		}
	}
}
