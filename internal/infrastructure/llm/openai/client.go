// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
)

const extractionPrompt = `You are a genealogical event extractor for family trees. Extract tree events from the given text.

Each event has a type and the fields that type needs:
- add_person: person_id, name, sex ("male" or "female")
- add_relation: relation_id, relation_type, source_id, target_id, and optionally child_ids
- mark_deceased: person_id
- update_relation: relation_id plus the fields to change (relation_type, child_ids, hidden)

Relation types: betrothal, marriage, divorce, levirate_marriage, levirate_release, parent_child, sibling, unmarried_union. For parent_child the source is the parent. For a couple's children, prefer child_ids on the union over separate parent_child relations.

Make up short lowercase IDs (p1, p2, r1, ...) for new people and relations. When the text mentions someone from the known people list, use their existing ID instead of inventing a new one. Order events so people appear before relations that reference them.

Return ONLY a valid JSON array, no other text.

Example:
Input: "Reuven married Leah, and their son was Chanoch. Reuven later died."
Output: [
  {"type": "add_person", "person_id": "p1", "name": "Reuven", "sex": "male"},
  {"type": "add_person", "person_id": "p2", "name": "Leah", "sex": "female"},
  {"type": "add_person", "person_id": "p3", "name": "Chanoch", "sex": "male"},
  {"type": "add_relation", "relation_id": "r1", "relation_type": "marriage", "source_id": "p1", "target_id": "p2", "child_ids": ["p3"]},
  {"type": "mark_deceased", "person_id": "p1"}
]`

const conflictPrompt = `Compare these proposed events against the recorded state of a family tree. Identify contradictions.

Proposed events:
%s

Recorded state:
%s

Look for: a death recorded for someone already deceased, a union involving a deceased person, a person added who already exists under another ID, children attributed against recorded parentage.

For each contradiction found, return:
- event_index: Index of the conflicting proposed event (0-based)
- description: What the contradiction is
- severity: "minor", "major", or "critical"

Return ONLY a valid JSON array, no other text. Return empty array [] if no contradictions found.`

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// ExtractEvents extracts proposed tree events from the given text.
func (c *Client) ExtractEvents(ctx context.Context, text string, knownPeople []string) ([]entities.RawEvent, error) {
	content := text
	if len(knownPeople) > 0 {
		content = fmt.Sprintf("Known people in the tree:\n%s\n\nText:\n%s", strings.Join(knownPeople, "\n"), text)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "calling OpenAI")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	reply := cleanJSONResponse(resp.Choices[0].Message.Content)

	var events []entities.RawEvent
	if err := json.Unmarshal([]byte(reply), &events); err != nil {
		return nil, errors.Wrapf(err, "parsing events JSON (response: %s)", reply)
	}

	return events, nil
}

// CheckConflicts checks proposed events against the recorded snapshot.
func (c *Client) CheckConflicts(ctx context.Context, proposed []entities.RawEvent, snapshot *entities.Snapshot) ([]ports.ExtractionIssue, error) {
	if len(proposed) == 0 || snapshot == nil || len(snapshot.People()) == 0 {
		return nil, nil
	}

	proposedJSON, err := json.Marshal(proposed)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling proposed events")
	}

	stateJSON, err := json.Marshal(snapshotToState(snapshot))
	if err != nil {
		return nil, errors.Wrap(err, "marshaling snapshot state")
	}

	prompt := fmt.Sprintf(conflictPrompt, string(proposedJSON), string(stateJSON))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "calling OpenAI")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	reply := cleanJSONResponse(resp.Choices[0].Message.Content)

	var rawIssues []rawConflict
	if err := json.Unmarshal([]byte(reply), &rawIssues); err != nil {
		return nil, errors.Wrapf(err, "parsing conflicts JSON (response: %s)", reply)
	}

	issues := make([]ports.ExtractionIssue, 0, len(rawIssues))
	for _, ri := range rawIssues {
		if ri.EventIndex < 0 || ri.EventIndex >= len(proposed) {
			continue
		}

		issues = append(issues, ports.ExtractionIssue{
			Event:       proposed[ri.EventIndex],
			Description: ri.Description,
			Severity:    ri.Severity,
		})
	}

	return issues, nil
}

// rawConflict is the JSON structure for detected contradictions.
type rawConflict struct {
	EventIndex  int    `json:"event_index"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// snapshotState is the compact tree state sent to the model.
type snapshotState struct {
	Slice     int             `json:"slice"`
	People    []statePerson   `json:"people"`
	Relations []stateRelation `json:"relations"`
}

type statePerson struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sex      string `json:"sex"`
	Deceased bool   `json:"deceased,omitempty"`
}

type stateRelation struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	ChildIDs []string `json:"child_ids,omitempty"`
}

// snapshotToState flattens a snapshot for the prompt.
func snapshotToState(snapshot *entities.Snapshot) snapshotState {
	people := snapshot.People()
	relations := snapshot.Relations()

	state := snapshotState{
		Slice:     snapshot.Slice,
		People:    make([]statePerson, 0, len(people)),
		Relations: make([]stateRelation, 0, len(relations)),
	}
	for _, p := range people {
		state.People = append(state.People, statePerson{
			ID:       p.ID,
			Name:     p.Name,
			Sex:      string(p.Sex),
			Deceased: p.DeadAt(snapshot.Slice),
		})
	}
	for _, r := range relations {
		state.Relations = append(state.Relations, stateRelation{
			ID:       r.ID,
			Type:     string(r.Type),
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			ChildIDs: r.ChildIDs,
		})
	}
	return state
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
