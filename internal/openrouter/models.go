package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Model is one entry of the upstream model list. Pricing and context length
// are upstream-declared metadata and may be absent.
type Model struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	ContextLength int          `json:"context_length,omitempty"`
	Pricing       Pricing      `json:"pricing,omitempty"`
	Architecture  Architecture `json:"architecture,omitempty"`
}

// Pricing is USD per token/image, kept as the strings the upstream declares.
type Pricing struct {
	Prompt     string `json:"prompt,omitempty"`
	Completion string `json:"completion,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Architecture declares the model's capability tags.
type Architecture struct {
	OutputModalities []string `json:"output_modalities"`
}

func (a Architecture) hasModality(tag string) bool {
	for _, m := range a.OutputModalities {
		if m == tag {
			return true
		}
	}
	return false
}

// ModelCatalog partitions the flat upstream model list into text-capable
// and image-capable buckets. A model declaring neither tag appears in
// neither bucket.
type ModelCatalog struct {
	Text  []Model `json:"text"`
	Image []Model `json:"image"`
}

// ListModels fetches the flat model list and categorizes it by declared
// output capability. Both buckets come back sorted by display name using
// locale-aware comparison, so equal inputs in any permutation categorize
// identically.
func (c *Client) ListModels(ctx context.Context) (*ModelCatalog, error) {
	raw, err := c.getJSON(ctx, "/models")
	if err != nil {
		return nil, err
	}
	var reply struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		if !json.Valid(raw) {
			return nil, &ParseError{Op: "listModels", Err: err}
		}
		return nil, &ShapeError{Op: "listModels", Summary: fmt.Sprintf("unexpected reply structure: %v", err)}
	}
	if reply.Data == nil {
		return nil, &ShapeError{Op: "listModels", Summary: "reply has no 'data' field"}
	}
	var models []Model
	if err := json.Unmarshal(*reply.Data, &models); err != nil {
		kind, length := describeJSON(*reply.Data)
		return nil, &ShapeError{Op: "listModels", Summary: fmt.Sprintf("'data' field is %v (len %v), not a model array", kind, length)}
	}
	return categorizeModels(models), nil
}

// categorizeModels buckets by capability tag presence. Membership is
// decided solely by the declared tags, so categorization is idempotent and
// independent of input order.
func categorizeModels(models []Model) *ModelCatalog {
	catalog := &ModelCatalog{
		Text:  []Model{},
		Image: []Model{},
	}
	for _, m := range models {
		if m.Architecture.hasModality("text") {
			catalog.Text = append(catalog.Text, m)
		}
		if m.Architecture.hasModality("image") {
			catalog.Image = append(catalog.Image, m)
		}
	}
	sortModelsByName(catalog.Text)
	sortModelsByName(catalog.Image)
	return catalog
}

func sortModelsByName(models []Model) {
	col := collate.New(language.English)
	sort.SliceStable(models, func(i, j int) bool {
		if c := col.CompareString(models[i].Name, models[j].Name); c != 0 {
			return c < 0
		}
		// Duplicate display names tie-break on id to keep the order stable
		return models[i].ID < models[j].ID
	})
}
