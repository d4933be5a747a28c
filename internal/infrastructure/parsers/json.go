package parsers

import (
	"encoding/json"
	"io"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

// JSONParser parses tree events from JSON format.
type JSONParser struct{}

// Parse reads a JSON array of events from the reader.
func (p *JSONParser) Parse(r io.Reader) ([]entities.RawEvent, error) {
	var events []entities.RawEvent

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&events); err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range events {
		events[i].LineNum = i + 1
	}

	return events, nil
}
