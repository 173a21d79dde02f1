// Package attendance builds attendance records and writes them to the
// remote store.
package attendance

import (
	"errors"
	"strings"
	"unicode"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultCollection is the store path records are written under.
const DefaultCollection = "log_attendance"

// TimestampLayout renders dd-MM-yyyy HH:mm:ss.
const TimestampLayout = "02-01-2006 15:04:05"

// Record is one check-in. Field names on the wire are fixed: name, tanggal.
type Record struct {
	Name    string `json:"name" firestore:"name" dynamodbav:"name"`
	Tanggal string `json:"tanggal" firestore:"tanggal" dynamodbav:"tanggal"`
}

func NewRecord(name string, at time.Time, loc *time.Location) Record {
	if loc == nil {
		loc = time.Local
	}
	return Record{Name: name, Tanggal: at.In(loc).Format(TimestampLayout)}
}

// Path is the store location of the record keyed by name.
func Path(collection, name string) string {
	return collection + "/" + name
}

// NormalizeName trims surrounding space and puts the name in NFC so that the
// same name typed on different keyboards maps to one key.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ErrInvalidName rejects names that would not be one flat key in every store.
// The realtime database refuses these characters and treats "/" as nesting.
var ErrInvalidName = errors.New(`name must not contain "/", ".", "#", "$", "[", "]" or control characters`)

// ValidateName checks a normalized name can be used as a record key.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, r := range name {
		if strings.ContainsRune("/.#$[]", r) || unicode.IsControl(r) {
			return ErrInvalidName
		}
	}
	return nil
}
