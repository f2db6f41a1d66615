package openrouter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func newNormalizeClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(validConf())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNormalizeImageTypedImagesDataURL(t *testing.T) {
	c := newNormalizeClient(t)
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	raw := fmt.Sprintf(`{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/webp;base64,%v"}}]}}],"model":"m"}`, payload)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "req-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "png-bytes")
	testboil.FailTestIfDiff(t, res.MIME, "image/webp")
	testboil.FailTestIfDiff(t, res.Model, "m")
}

func TestNormalizeImageTypedImagesHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()
	c := newNormalizeClient(t)
	raw := fmt.Sprintf(`{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"%v/img.jpg"}}]}}]}`, srv.URL)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "req-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "jpeg-bytes")
	testboil.FailTestIfDiff(t, res.MIME, "image/jpeg")
	// Upstream reply omitted the model, so the requested one is reported
	testboil.FailTestIfDiff(t, res.Model, "req-model")
}

func TestNormalizeImageFetchDefaultsMIMEWhenAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// net/http sniffs a Content-Type unless explicitly deleted, so
		// exercise the default through a raw header wipe
		w.Header()["Content-Type"] = nil
		w.Write([]byte{0x00, 0x01})
	}))
	defer srv.Close()
	c := newNormalizeClient(t)
	data, mime, err := c.fetchImage(context.Background(), srv.URL+"/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 2 {
		t.Errorf("expected 2 bytes, got %v", len(data))
	}
	testboil.FailTestIfDiff(t, mime, defaultImageMIME)
}

func TestNormalizeImageMultipartContent(t *testing.T) {
	c := newNormalizeClient(t)
	payload := base64.StdEncoding.EncodeToString([]byte("inline"))
	testCases := []struct {
		desc string
		raw  string
		want string
		mime string
	}{
		{
			desc: "image_url sub-object",
			raw:  `{"choices":[{"message":{"content":[{"type":"text","text":"here"},{"type":"image_url","image_url":{"url":"data:image/gif;base64,` + payload + `"}}]}}]}`,
			want: "inline",
			mime: "image/gif",
		},
		{
			desc: "embedded base64 string",
			raw:  `{"choices":[{"message":{"content":[{"type":"image","data":"` + payload + `"}]}}]}`,
			want: "inline",
			mime: defaultImageMIME,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			res, err := c.normalizeImage(context.Background(), []byte(tC.raw), "m")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testboil.FailTestIfDiff(t, string(res.Data), tC.want)
			testboil.FailTestIfDiff(t, res.MIME, tC.mime)
		})
	}
}

func TestNormalizeImageStringContentDataURL(t *testing.T) {
	c := newNormalizeClient(t)
	payload := base64.StdEncoding.EncodeToString([]byte("str"))
	raw := fmt.Sprintf(`{"choices":[{"message":{"content":"data:image/png;base64,%v"}}]}`, payload)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "str")
}

func TestNormalizeImageStringContentBareBase64(t *testing.T) {
	c := newNormalizeClient(t)
	// A blob comfortably above the minimum speculative threshold
	blob := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 400)))
	raw := fmt.Sprintf(`{"choices":[{"message":{"content":"%v"}}]}`, blob)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 400 {
		t.Errorf("expected 400 decoded bytes, got %v", len(res.Data))
	}
	testboil.FailTestIfDiff(t, res.MIME, defaultImageMIME)
}

func TestNormalizeImageSpeculativeBase64FallsThrough(t *testing.T) {
	c := newNormalizeClient(t)
	testCases := []struct {
		desc    string
		content string
	}{
		{desc: "too short for heuristic", content: base64.StdEncoding.EncodeToString([]byte("tiny"))},
		{desc: "not base64 at all", content: strings.Repeat("!?", 200)},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			raw := fmt.Sprintf(`{"choices":[{"message":{"content":"%v"}}]}`, tC.content)
			_, err := c.normalizeImage(context.Background(), []byte(raw), "m")
			// The speculative miss falls through; with no other
			// candidate left the whole call reports a shape error
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected ShapeError after fallthrough, got: %v", err)
			}
		})
	}
}

func TestNormalizeImageMessageImageURLField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("field-bytes"))
	}))
	defer srv.Close()
	c := newNormalizeClient(t)
	testCases := []struct {
		desc string
		raw  string
	}{
		{desc: "string field", raw: fmt.Sprintf(`{"choices":[{"message":{"image_url":"%v/a.png"}}]}`, srv.URL)},
		{desc: "object field", raw: fmt.Sprintf(`{"choices":[{"message":{"image_url":{"url":"%v/a.png"}}}]}`, srv.URL)},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			res, err := c.normalizeImage(context.Background(), []byte(tC.raw), "m")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testboil.FailTestIfDiff(t, string(res.Data), "field-bytes")
		})
	}
}

func TestNormalizeImageTopLevelData(t *testing.T) {
	c := newNormalizeClient(t)
	payload := base64.StdEncoding.EncodeToString([]byte("top"))
	raw := fmt.Sprintf(`{"data":[{"b64_json":"%v"}]}`, payload)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "top")
}

func TestNormalizeImagePrecedenceIsFixed(t *testing.T) {
	c := newNormalizeClient(t)
	first := base64.StdEncoding.EncodeToString([]byte("first"))
	last := base64.StdEncoding.EncodeToString([]byte("last"))
	// Both shape 1 (typed images) and shape 5 (top-level data) apply; the
	// earlier candidate has to win
	raw := fmt.Sprintf(
		`{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,%v"}}]}}],"data":[{"b64_json":"%v"}]}`,
		first, last)
	res, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, string(res.Data), "first")
}

func TestNormalizeImageExhaustionDiagnostic(t *testing.T) {
	c := newNormalizeClient(t)
	raw := `{"choices":[{"message":{"content":"no image here"}}],"model":"m"}`
	_, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got: %v", err)
	}
	testboil.AssertStringContains(t, err.Error(), "choices=1")
	testboil.AssertStringContains(t, err.Error(), "content=string")
	testboil.AssertStringContains(t, err.Error(), "data=0")
	if strings.Contains(err.Error(), "no image here") {
		t.Error("diagnostic should summarize the shape, not dump the payload")
	}
}

func TestNormalizeImageMalformedDataURLFailsCall(t *testing.T) {
	c := newNormalizeClient(t)
	// A located typed image entry with broken base64 is a hard failure,
	// unlike the speculative string-content branch
	raw := `{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,%%%notb64"}}]}}]}`
	_, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	if err == nil {
		t.Fatal("expected hard failure on broken data-URL")
	}
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError for undecodable payload, got: %v", err)
	}
	testboil.AssertStringContains(t, err.Error(), "typed-images")
}

func TestNormalizeImageFailedFetchKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()
	c := newNormalizeClient(t)
	raw := fmt.Sprintf(`{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"%v/img.png"}}]}}]}`, srv.URL)
	_, err := c.normalizeImage(context.Background(), []byte(raw), "m")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError from the failed fetch, got: %v", err)
	}
	testboil.FailTestIfDiff(t, statusErr.Code, http.StatusBadGateway)
}

func TestDecodeDataURLDefaultsUnparseableSubtype(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	res, err := decodeDataURL("data:application/octet-stream;base64," + payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, res.mime, defaultImageMIME)
}

func TestURLFromField(t *testing.T) {
	testCases := []struct {
		desc string
		raw  string
		want string
	}{
		{desc: "plain string", raw: `"https://x/y.png"`, want: "https://x/y.png"},
		{desc: "nested object", raw: `{"url":"https://x/y.png"}`, want: "https://x/y.png"},
		{desc: "absent", raw: ``, want: ""},
		{desc: "unrelated object", raw: `{"other":1}`, want: ""},
		{desc: "number", raw: `42`, want: ""},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			testboil.FailTestIfDiff(t, urlFromField([]byte(tC.raw)), tC.want)
		})
	}
}
