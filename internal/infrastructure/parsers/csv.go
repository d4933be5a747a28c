package parsers

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

// CSVParser parses tree events from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed events.
// Expected columns: slice, type, person_id, name, sex, relation_id,
// relation_type, source_id, target_id, child_ids, hidden. Only type is
// required; child_ids is semicolon-separated.
func (p *CSVParser) Parse(r io.Reader) ([]entities.RawEvent, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	if _, ok := colIndex["type"]; !ok {
		return nil, errors.New("missing required column: type")
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to raw events.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]entities.RawEvent, error) {
	var events []entities.RawEvent
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}

		event, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// parseRecord converts a CSV record to a raw event.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (entities.RawEvent, error) {
	event := entities.RawEvent{
		Type:         getColumn(record, colIndex, "type"),
		PersonID:     getColumn(record, colIndex, "person_id"),
		Name:         getColumn(record, colIndex, "name"),
		Sex:          getColumn(record, colIndex, "sex"),
		RelationID:   getColumn(record, colIndex, "relation_id"),
		RelationType: getColumn(record, colIndex, "relation_type"),
		SourceID:     getColumn(record, colIndex, "source_id"),
		TargetID:     getColumn(record, colIndex, "target_id"),
		LineNum:      lineNum,
	}

	if sliceStr := getColumn(record, colIndex, "slice"); sliceStr != "" {
		slice, err := strconv.Atoi(sliceStr)
		if err != nil {
			return entities.RawEvent{}, errors.Wrapf(err, "line %d: invalid slice value %q", lineNum, sliceStr)
		}
		event.Slice = &slice
	}

	if childStr := getColumn(record, colIndex, "child_ids"); childStr != "" {
		event.ChildIDs = strings.Split(childStr, ";")
	}

	if hiddenStr := getColumn(record, colIndex, "hidden"); hiddenStr != "" {
		hidden, err := strconv.ParseBool(hiddenStr)
		if err != nil {
			return entities.RawEvent{}, errors.Wrapf(err, "line %d: invalid hidden value %q", lineNum, hiddenStr)
		}
		event.Hidden = &hidden
	}

	return event, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
