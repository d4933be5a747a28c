package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []entities.RawEvent
	}{
		{
			name:  "single event",
			input: `[{"type": "add_person", "person_id": "p1", "name": "Reuven", "sex": "male"}]`,
			expected: []entities.RawEvent{
				{Type: "add_person", PersonID: "p1", Name: "Reuven", Sex: "male", LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []entities.RawEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"slice": 2,
		"type": "add_relation",
		"relation_id": "r1",
		"relation_type": "marriage",
		"source_id": "p1",
		"target_id": "p2",
		"child_ids": ["p3", "p4"],
		"hidden": true
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	event := result[0]
	require.NotNil(t, event.Slice)
	assert.Equal(t, 2, *event.Slice)
	assert.Equal(t, "add_relation", event.Type)
	assert.Equal(t, "r1", event.RelationID)
	assert.Equal(t, "marriage", event.RelationType)
	assert.Equal(t, "p1", event.SourceID)
	assert.Equal(t, "p2", event.TargetID)
	assert.Equal(t, []string{"p3", "p4"}, event.ChildIDs)
	require.NotNil(t, event.Hidden)
	assert.True(t, *event.Hidden)
	assert.Equal(t, 1, event.LineNum)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	parser := &JSONParser{}
	_, err := parser.Parse(strings.NewReader("not json"))
	require.Error(t, err)
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []entities.RawEvent
	}{
		{
			name:  "person row",
			input: "type,person_id,name,sex\nadd_person,p1,Reuven,male\n",
			expected: []entities.RawEvent{
				{Type: "add_person", PersonID: "p1", Name: "Reuven", Sex: "male", LineNum: 2},
			},
		},
		{
			name:     "empty CSV (header only)",
			input:    "type,person_id,name,sex\n",
			expected: nil,
		},
		{
			name:  "columns in different order",
			input: "sex,name,person_id,type\nfemale,Leah,p2,add_person\n",
			expected: []entities.RawEvent{
				{Type: "add_person", PersonID: "p2", Name: "Leah", Sex: "female", LineNum: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCSVParser_Parse_AllColumns(t *testing.T) {
	input := "slice,type,person_id,name,sex,relation_id,relation_type,source_id,target_id,child_ids,hidden\n" +
		"3,add_relation,,,,r1,marriage,p1,p2,p3;p4,true\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	event := result[0]
	require.NotNil(t, event.Slice)
	assert.Equal(t, 3, *event.Slice)
	assert.Equal(t, "add_relation", event.Type)
	assert.Equal(t, "r1", event.RelationID)
	assert.Equal(t, "marriage", event.RelationType)
	assert.Equal(t, "p1", event.SourceID)
	assert.Equal(t, "p2", event.TargetID)
	assert.Equal(t, []string{"p3", "p4"}, event.ChildIDs)
	require.NotNil(t, event.Hidden)
	assert.True(t, *event.Hidden)
	assert.Equal(t, 2, event.LineNum)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "missing required column",
			input:  "person_id,name\np1,Reuven\n",
			errMsg: "missing required column: type",
		},
		{
			name:   "invalid slice value",
			input:  "slice,type,person_id\nfirst,mark_deceased,p1\n",
			errMsg: "invalid slice value",
		},
		{
			name:   "invalid hidden value",
			input:  "type,relation_id,hidden\nupdate_relation,r1,maybe\n",
			errMsg: "invalid hidden value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("unknown"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("events.json"))
	assert.IsType(t, &CSVParser{}, ForFile("data.csv"))
	assert.Nil(t, ForFile("file.txt"))
	assert.Nil(t, ForFile("noextension"))
}
