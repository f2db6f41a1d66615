package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

var ErrNotFound = errors.New("not found")

// Store is the record store the service and the HTTP API work against.
// Deletion cascades parent to child: removing a posting removes its
// keywords and their phrases, removing a keyword removes its phrases.
type Store interface {
	CreatePosting(p JobPosting) (JobPosting, error)
	GetPosting(id string) (JobPosting, error)
	ListPostings() ([]JobPosting, error)
	DeletePosting(id string) error

	CreateKeyword(k Keyword) (Keyword, error)
	GetKeyword(id string) (Keyword, error)
	ListKeywords(postingID string) ([]Keyword, error)
	SetMatched(id string, matched bool) error
	DeleteKeyword(id string) error

	CreatePhrase(ph Phrase) (Phrase, error)
	ListPhrases(keywordID string) ([]Phrase, error)
	AdoptPhrase(id string) error
	DeletePhrase(id string) error

	Summarize(postingID string) (Summary, error)
}

// MemStore is the authoritative in-memory store, guarded by one mutex.
// Persistence backends snapshot and restore it wholesale.
type MemStore struct {
	mu       sync.RWMutex
	postings map[string]JobPosting
	keywords map[string]Keyword
	phrases  map[string]Phrase
}

func NewMemStore() *MemStore {
	return &MemStore{
		postings: make(map[string]JobPosting),
		keywords: make(map[string]Keyword),
		phrases:  make(map[string]Phrase),
	}
}

func (s *MemStore) CreatePosting(p JobPosting) (JobPosting, error) {
	if strings.TrimSpace(p.Title) == "" {
		return JobPosting{}, fmt.Errorf("posting title must not be empty")
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings[p.ID] = p
	return p, nil
}

func (s *MemStore) GetPosting(id string) (JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.postings[id]
	if !ok {
		return JobPosting{}, fmt.Errorf("posting '%v': %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemStore) ListPostings() ([]JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	postings := maps.Values(s.postings)
	sort.Slice(postings, func(i, j int) bool {
		if !postings[i].CreatedAt.Equal(postings[j].CreatedAt) {
			return postings[i].CreatedAt.Before(postings[j].CreatedAt)
		}
		return postings[i].ID < postings[j].ID
	})
	return postings, nil
}

func (s *MemStore) DeletePosting(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.postings[id]; !ok {
		return fmt.Errorf("posting '%v': %w", id, ErrNotFound)
	}
	delete(s.postings, id)
	for kid, k := range s.keywords {
		if k.PostingID != id {
			continue
		}
		delete(s.keywords, kid)
		s.deletePhrasesOf(kid)
	}
	return nil
}

// deletePhrasesOf requires s.mu held.
func (s *MemStore) deletePhrasesOf(keywordID string) {
	for pid, ph := range s.phrases {
		if ph.KeywordID == keywordID {
			delete(s.phrases, pid)
		}
	}
}

func (s *MemStore) CreateKeyword(k Keyword) (Keyword, error) {
	if strings.TrimSpace(k.Text) == "" {
		return Keyword{}, fmt.Errorf("keyword text must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.postings[k.PostingID]; !ok {
		return Keyword{}, fmt.Errorf("posting '%v': %w", k.PostingID, ErrNotFound)
	}
	k.ID = uuid.NewString()
	s.keywords[k.ID] = k
	return k, nil
}

func (s *MemStore) GetKeyword(id string) (Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keywords[id]
	if !ok {
		return Keyword{}, fmt.Errorf("keyword '%v': %w", id, ErrNotFound)
	}
	return k, nil
}

func (s *MemStore) ListKeywords(postingID string) ([]Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.postings[postingID]; !ok {
		return nil, fmt.Errorf("posting '%v': %w", postingID, ErrNotFound)
	}
	keywords := []Keyword{}
	for _, k := range s.keywords {
		if k.PostingID == postingID {
			keywords = append(keywords, k)
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Priority != keywords[j].Priority {
			return keywords[i].Priority < keywords[j].Priority
		}
		return keywords[i].Text < keywords[j].Text
	})
	return keywords, nil
}

func (s *MemStore) SetMatched(id string, matched bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keywords[id]
	if !ok {
		return fmt.Errorf("keyword '%v': %w", id, ErrNotFound)
	}
	k.Matched = matched
	s.keywords[id] = k
	return nil
}

func (s *MemStore) DeleteKeyword(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keywords[id]; !ok {
		return fmt.Errorf("keyword '%v': %w", id, ErrNotFound)
	}
	delete(s.keywords, id)
	s.deletePhrasesOf(id)
	return nil
}

func (s *MemStore) CreatePhrase(ph Phrase) (Phrase, error) {
	if strings.TrimSpace(ph.Text) == "" {
		return Phrase{}, fmt.Errorf("phrase text must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keywords[ph.KeywordID]; !ok {
		return Phrase{}, fmt.Errorf("keyword '%v': %w", ph.KeywordID, ErrNotFound)
	}
	ph.ID = uuid.NewString()
	s.phrases[ph.ID] = ph
	return ph, nil
}

func (s *MemStore) ListPhrases(keywordID string) ([]Phrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.keywords[keywordID]; !ok {
		return nil, fmt.Errorf("keyword '%v': %w", keywordID, ErrNotFound)
	}
	phrases := []Phrase{}
	for _, ph := range s.phrases {
		if ph.KeywordID == keywordID {
			phrases = append(phrases, ph)
		}
	}
	sort.Slice(phrases, func(i, j int) bool { return phrases[i].Text < phrases[j].Text })
	return phrases, nil
}

func (s *MemStore) AdoptPhrase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ph, ok := s.phrases[id]
	if !ok {
		return fmt.Errorf("phrase '%v': %w", id, ErrNotFound)
	}
	ph.Adopted = true
	s.phrases[id] = ph
	// Adopting a phrase marks its keyword as matched
	if k, ok := s.keywords[ph.KeywordID]; ok {
		k.Matched = true
		s.keywords[ph.KeywordID] = k
	}
	return nil
}

func (s *MemStore) DeletePhrase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.phrases[id]; !ok {
		return fmt.Errorf("phrase '%v': %w", id, ErrNotFound)
	}
	delete(s.phrases, id)
	return nil
}

func (s *MemStore) Summarize(postingID string) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.postings[postingID]; !ok {
		return Summary{}, fmt.Errorf("posting '%v': %w", postingID, ErrNotFound)
	}
	sum := Summary{PostingID: postingID}
	for _, k := range s.keywords {
		if k.PostingID != postingID {
			continue
		}
		sum.Total++
		if k.Matched {
			sum.Matched++
		}
	}
	return sum, nil
}

// SnapshotState copies the full store content for persistence.
func (s *MemStore) SnapshotState() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		Postings: maps.Values(s.postings),
		Keywords: maps.Values(s.keywords),
		Phrases:  maps.Values(s.phrases),
	}
	sort.Slice(snap.Postings, func(i, j int) bool { return snap.Postings[i].ID < snap.Postings[j].ID })
	sort.Slice(snap.Keywords, func(i, j int) bool { return snap.Keywords[i].ID < snap.Keywords[j].ID })
	sort.Slice(snap.Phrases, func(i, j int) bool { return snap.Phrases[i].ID < snap.Phrases[j].ID })
	return snap
}

// Restore replaces the full store content with the snapshot's.
func (s *MemStore) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = make(map[string]JobPosting, len(snap.Postings))
	for _, p := range snap.Postings {
		s.postings[p.ID] = p
	}
	s.keywords = make(map[string]Keyword, len(snap.Keywords))
	for _, k := range snap.Keywords {
		s.keywords[k.ID] = k
	}
	s.phrases = make(map[string]Phrase, len(snap.Phrases))
	for _, ph := range snap.Phrases {
		s.phrases[ph.ID] = ph
	}
}
