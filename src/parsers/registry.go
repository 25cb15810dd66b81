package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/moneyfolio/src/models"
)

// ErrUnknownFormat is returned when no registered extractor recognizes a
// file. The error message lists every supported institution.
var ErrUnknownFormat = errors.New("unrecognized statement format")

// Extractor turns one institution's raw statement file into records.
type Extractor interface {
	// Source is the institution identifier stamped on extracted records.
	Source() string
	// Detect reports whether the file looks like this institution's format.
	Detect(content []byte, filename string) bool
	// Parse extracts the candidate records from the file content.
	Parse(content []byte) ([]models.ParsedRecord, error)
}

// Registry holds extractors in registration order. The order is the
// tie-break for ambiguous files: the first extractor whose Detect
// accepts wins.
type Registry struct {
	extractors []Extractor
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an extractor to the dispatch order. Registering two
// extractors for the same source is a programming error.
func (r *Registry) Register(e Extractor) {
	for _, existing := range r.extractors {
		if existing.Source() == e.Source() {
			panic(fmt.Sprintf("parsers: extractor already registered for source %q", e.Source()))
		}
	}
	r.extractors = append(r.extractors, e)
}

// Extractors returns the registered extractors in dispatch order.
func (r *Registry) Extractors() []Extractor {
	out := make([]Extractor, len(r.extractors))
	copy(out, r.extractors)
	return out
}

// Sources returns the registered institution identifiers in dispatch order.
func (r *Registry) Sources() []string {
	out := make([]string, len(r.extractors))
	for i, e := range r.extractors {
		out[i] = e.Source()
	}
	return out
}

// Resolve picks the first extractor recognizing the file.
func (r *Registry) Resolve(content []byte, filename string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.Detect(content, filename) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q matched none of: %s",
		ErrUnknownFormat, filename, strings.Join(r.Sources(), ", "))
}

// Parse resolves the right extractor for the file and runs it.
func (r *Registry) Parse(content []byte, filename string) ([]models.ParsedRecord, error) {
	e, err := r.Resolve(content, filename)
	if err != nil {
		return nil, err
	}
	return e.Parse(content)
}
