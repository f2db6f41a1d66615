package match

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

const extractSystemPrompt = `You extract hiring keywords from job postings. ` +
	`Reply with a JSON object: {"keywords":[{"text":"...","priority":N}]} ` +
	`where priority is 1 (must-have), 2 (important) or 3 (nice-to-have). ` +
	`Only include skills, tools and qualifications actually named in the posting.`

const draftSystemPrompt = `You rewrite résumé phrasing to cover a specific hiring keyword. ` +
	`Reply with a JSON object: {"phrases":["...","..."]} containing 2-4 truthful, ` +
	`concise résumé bullet points grounded in the supplied résumé text. ` +
	`Never invent experience that is not in the résumé.`

// Completer is the slice of the OpenRouter client the service needs.
type Completer interface {
	CompleteText(ctx context.Context, req openrouter.TextRequest) (*openrouter.TextResult, error)
}

// Service ties the record store to the LLM operations: keyword extraction
// from postings and phrase drafting against a résumé.
type Service struct {
	store   Store
	llm     Completer
	persist Persister
}

// NewService wires store, completer and an optional persister. When persist
// is non-nil, every successful mutation flushes a snapshot.
func NewService(store Store, llm Completer, persist Persister) *Service {
	return &Service{store: store, llm: llm, persist: persist}
}

func (s *Service) Store() Store { return s.store }

func (s *Service) flush() {
	if s.persist == nil {
		return
	}
	mem, ok := s.store.(*MemStore)
	if !ok {
		return
	}
	if err := s.persist.Save(mem.SnapshotState()); err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to persist snapshot: %v\n", err))
	}
}

// CreatePosting stores a posting and flushes.
func (s *Service) CreatePosting(p JobPosting) (JobPosting, error) {
	created, err := s.store.CreatePosting(p)
	if err != nil {
		return JobPosting{}, err
	}
	s.flush()
	return created, nil
}

// DeletePosting removes the posting and, via the store's cascade, its
// keywords and phrases.
func (s *Service) DeletePosting(id string) error {
	if err := s.store.DeletePosting(id); err != nil {
		return err
	}
	s.flush()
	return nil
}

type extractedKeywords struct {
	Keywords []struct {
		Text     string `json:"text"`
		Priority int    `json:"priority"`
	} `json:"keywords"`
}

// ExtractKeywords asks the LLM for the posting's hiring keywords and
// persists them. Returns the created records in priority order.
func (s *Service) ExtractKeywords(ctx context.Context, postingID string) ([]Keyword, error) {
	posting, err := s.store.GetPosting(postingID)
	if err != nil {
		return nil, err
	}
	res, err := s.llm.CompleteText(ctx, openrouter.TextRequest{
		System: extractSystemPrompt,
		Payload: map[string]string{
			"title":   posting.Title,
			"company": posting.Company,
			"posting": posting.Body,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("keyword extraction failed: %w", err)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Okf("keyword extraction reply from %v: %v\n", res.Model, res.Text)
	}
	var extracted extractedKeywords
	if err := json.Unmarshal([]byte(res.Text), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse keyword extraction reply: %w", err)
	}
	created := make([]Keyword, 0, len(extracted.Keywords))
	for _, kw := range extracted.Keywords {
		priority := kw.Priority
		if priority < 1 || priority > 3 {
			priority = 3
		}
		k, err := s.store.CreateKeyword(Keyword{
			PostingID: postingID,
			Text:      kw.Text,
			Priority:  priority,
		})
		if err != nil {
			ancli.PrintWarn(fmt.Sprintf("skipping keyword %q: %v\n", kw.Text, err))
			continue
		}
		created = append(created, k)
	}
	s.flush()
	return created, nil
}

type draftedPhrases struct {
	Phrases []string `json:"phrases"`
}

// DraftPhrases asks the LLM for résumé phrasings covering the keyword and
// stores them unadopted.
func (s *Service) DraftPhrases(ctx context.Context, keywordID, resume string) ([]Phrase, error) {
	keyword, err := s.store.GetKeyword(keywordID)
	if err != nil {
		return nil, err
	}
	res, err := s.llm.CompleteText(ctx, openrouter.TextRequest{
		System: draftSystemPrompt,
		Payload: map[string]string{
			"keyword": keyword.Text,
			"resume":  resume,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("phrase drafting failed: %w", err)
	}
	var drafted draftedPhrases
	if err := json.Unmarshal([]byte(res.Text), &drafted); err != nil {
		return nil, fmt.Errorf("failed to parse phrase drafting reply: %w", err)
	}
	created := make([]Phrase, 0, len(drafted.Phrases))
	for _, text := range drafted.Phrases {
		ph, err := s.store.CreatePhrase(Phrase{
			KeywordID: keywordID,
			Text:      text,
			Source:    "llm",
		})
		if err != nil {
			ancli.PrintWarn(fmt.Sprintf("skipping phrase %q: %v\n", text, err))
			continue
		}
		created = append(created, ph)
	}
	s.flush()
	return created, nil
}

// AdoptPhrase marks a phrase adopted, which also marks its keyword matched.
func (s *Service) AdoptPhrase(id string) error {
	if err := s.store.AdoptPhrase(id); err != nil {
		return err
	}
	s.flush()
	return nil
}

// SetMatched toggles a keyword's match state directly.
func (s *Service) SetMatched(id string, matched bool) error {
	if err := s.store.SetMatched(id, matched); err != nil {
		return err
	}
	s.flush()
	return nil
}

// DeleteKeyword removes a keyword and its phrases.
func (s *Service) DeleteKeyword(id string) error {
	if err := s.store.DeleteKeyword(id); err != nil {
		return err
	}
	s.flush()
	return nil
}

// DeletePhrase removes one phrase.
func (s *Service) DeletePhrase(id string) error {
	if err := s.store.DeletePhrase(id); err != nil {
		return err
	}
	s.flush()
	return nil
}
