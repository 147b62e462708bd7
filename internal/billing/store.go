package billing

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Counts holds the number of saved documents of each kind.
type Counts struct {
	Invoices   int
	Quotations int
}

// CountsNotifier is told the fresh counts after every successful save.
type CountsNotifier func(Counts)

// DocumentStore appends documents to per-kind JSON lists in a KV. Saved
// documents are never updated or removed individually.
type DocumentStore struct {
	kv     KV
	notify CountsNotifier
}

func NewDocumentStore(kv KV) *DocumentStore {
	return &DocumentStore{kv: kv}
}

// OnSave registers the sink that receives counts after each save.
func (s *DocumentStore) OnSave(n CountsNotifier) {
	s.notify = n
}

// Save appends doc to the list for kind. Fields are not validated and
// numbers are not checked for duplicates.
func (s *DocumentStore) Save(kind Kind, doc Document) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	raw, ok, err := s.kv.Get(kind.ListKey())
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPersistenceUnavailable, kind.ListKey(), err)
	}

	var docs []json.RawMessage
	if ok {
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			log.Warn().Err(err).Str("key", kind.ListKey()).Msg("discarding malformed document list")
			docs = nil
		}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, doc.Number, err)
	}
	docs = append(docs, encoded)

	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind.ListKey(), err)
	}
	if err := s.kv.Set(kind.ListKey(), string(data)); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistenceUnavailable, kind.ListKey(), err)
	}

	log.Info().Str("kind", string(kind)).Str("number", string(doc.Number)).Int("items", len(doc.Items)).Msg("document saved")

	if s.notify != nil {
		s.notify(s.Counts())
	}
	return nil
}

// Count returns how many documents of kind are stored. Missing or corrupt
// data counts as zero.
func (s *DocumentStore) Count(kind Kind) int {
	docs, err := readList(s.kv, kind.ListKey())
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("count documents")
		return 0
	}
	return len(docs)
}

func (s *DocumentStore) Counts() Counts {
	return Counts{
		Invoices:   s.Count(Invoice),
		Quotations: s.Count(Quotation),
	}
}

// List decodes the saved documents of kind in stored order. Entries that
// do not decode as a Document are skipped.
func (s *DocumentStore) List(kind Kind) ([]Document, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	raws, err := readList(s.kv, kind.ListKey())
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(raws))
	for i, r := range raws {
		var d Document
		if err := json.Unmarshal(r, &d); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Int("index", i).Msg("skipping malformed document")
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Find returns the first saved document of kind with the given number.
func (s *DocumentStore) Find(kind Kind, number DocumentID) (Document, bool, error) {
	docs, err := s.List(kind)
	if err != nil {
		return Document{}, false, err
	}
	for _, d := range docs {
		if d.Number == number {
			return d, true, nil
		}
	}
	return Document{}, false, nil
}

// Clear removes both counters and both document lists.
func (s *DocumentStore) Clear() error {
	for _, k := range Kinds {
		for _, key := range []string{k.CounterKey(), k.ListKey()} {
			if err := s.kv.Remove(key); err != nil {
				return fmt.Errorf("%w: remove %s: %v", ErrPersistenceUnavailable, key, err)
			}
		}
	}
	log.Info().Msg("stored documents and counters cleared")
	if s.notify != nil {
		s.notify(Counts{})
	}
	return nil
}

// readList returns the raw entries of the JSON list at key. A missing key
// or a value that is not a JSON array yields an empty list. Only KV
// failures are returned.
func readList(kv KV, key string) ([]json.RawMessage, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistenceUnavailable, key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Debug().Err(fmt.Errorf("%w: %v", ErrMalformedData, err)).Str("key", key).Msg("treating list as empty")
		return nil, nil
	}
	return list, nil
}
