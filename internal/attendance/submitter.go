package attendance

import (
	"context"
	"errors"
	"log"
	"time"
)

var ErrEmptyName = errors.New("name is required")

// Writer stores a record at collection/key, replacing whatever was there.
type Writer interface {
	Write(ctx context.Context, collection, key string, rec Record) error
}

// SubmitError is a failed write. Message is the store's error text, shown to
// the user unchanged.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

type Submitter struct {
	Store      Writer
	Collection string
	Now        func() time.Time
	Location   *time.Location
}

func NewSubmitter(w Writer, collection string, loc *time.Location) *Submitter {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Submitter{Store: w, Collection: collection, Now: time.Now, Location: loc}
}

// Submit timestamps now and writes the record under the name. The key is
// NormalizeName(name), not the raw input: " Alice" is stored as "Alice".
// Names ValidateName rejects fail with ErrEmptyName or ErrInvalidName before
// anything is written. A second submit for the same name overwrites the
// first. Failures are not retried.
func (s *Submitter) Submit(ctx context.Context, name string) (Record, error) {
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return Record{}, &SubmitError{Message: err.Error(), Err: err}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rec := NewRecord(name, now(), s.Location)

	if err := s.Store.Write(ctx, s.Collection, name, rec); err != nil {
		log.Printf("[attendance] write %s failed: %v", Path(s.Collection, name), err)
		return Record{}, &SubmitError{Message: err.Error(), Err: err}
	}
	log.Printf("[attendance] wrote %s at %s", Path(s.Collection, name), rec.Tanggal)
	return rec, nil
}
