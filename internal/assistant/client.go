// Package assistant is the boundary to the generative-text service. It
// sends a context payload plus instruction to Gemini and returns plain or
// schema-constrained text. Calls are slow and fallible; errors surface to
// the caller and the front end shows them as non-fatal messages with manual
// retry only.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/richtext"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyNote is returned when a note action is requested on a note with no
// textual content.
var ErrEmptyNote = errors.New("assistant: note has no text content")

// Client wraps the Gemini API for the planner's text features.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a client. The model falls back to DefaultModel when empty.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assistant: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate sends a bare prompt and returns the completion text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// GenerateWithSystem sends a prompt under a system instruction.
func (c *Client) GenerateWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
}

// GenerateJSON sends a prompt constrained to a JSON response schema and
// returns the raw JSON bytes.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("assistant: generation failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("assistant: empty response")
	}
	return text, nil
}

// NoteAction is one of the study actions over a note's content.
type NoteAction string

const (
	ActionSummarize NoteAction = "summarize"
	ActionQuiz      NoteAction = "quiz"
	ActionExplain   NoteAction = "explain"
)

// NoteActionResult runs a summarize/quiz/explain action over the note's
// rich-text content.
func (c *Client) NoteActionResult(ctx context.Context, action NoteAction, noteHTML string) (string, error) {
	plain := richtext.PlainText(noteHTML)
	if plain == "" {
		return "", ErrEmptyNote
	}
	system, prompt, err := BuildNoteActionPrompt(action, plain)
	if err != nil {
		return "", err
	}
	return c.GenerateWithSystem(ctx, system, prompt)
}

// SuggestGoals asks for three SMART goal suggestions for the objective and
// parses them into goal drafts with status Not Started.
func (c *Client) SuggestGoals(ctx context.Context, objective string) ([]domain.GoalDraft, error) {
	raw, err := c.GenerateJSON(ctx, BuildGoalPrompt(objective), GoalSuggestionSchema())
	if err != nil {
		return nil, err
	}
	return ParseGoalSuggestions(raw)
}

// GenerateNote produces a study note on the topic. The note body is HTML and
// the title comes from its leading heading, falling back to the topic.
func (c *Client) GenerateNote(ctx context.Context, topic string) (title, body string, err error) {
	text, err := c.Generate(ctx, BuildNotePrompt(topic))
	if err != nil {
		return "", "", err
	}
	title, body = richtext.ExtractTitle(text)
	if title == "" {
		title = topic
	}
	if body == "" {
		body = text
	}
	return title, body, nil
}

// Chat answers a question against a snapshot of the user's planner data.
func (c *Client) Chat(ctx context.Context, question string, snap Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("assistant: failed to serialize data context: %w", err)
	}
	return c.Generate(ctx, BuildChatPrompt(question, string(payload)))
}

// StudyTip produces a short line of dashboard advice from the upcoming exams
// and still-open tasks.
func (c *Client) StudyTip(ctx context.Context, exams []domain.Exam, tasks []domain.Task) (string, error) {
	prompt, err := BuildStudyTipPrompt(exams, tasks)
	if err != nil {
		return "", err
	}
	return c.Generate(ctx, prompt)
}

// Snapshot is the data context sent with chat questions. Notes are reduced
// to references so full note bodies never leave the machine.
type Snapshot struct {
	Subjects    []domain.Subject        `json:"subjects"`
	Tasks       []domain.Task           `json:"tasks"`
	Exams       []domain.Exam           `json:"exams"`
	Notes       []NoteRef               `json:"notes"`
	Goals       []domain.Goal           `json:"goals"`
	Events      []domain.TimetableEvent `json:"events"`
	CurrentDate string                  `json:"currentDate"`
}

// NoteRef identifies a note without its content.
type NoteRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SubjectID string `json:"subjectId,omitempty"`
}

// NoteRefs reduces notes to references.
func NoteRefs(notes []domain.Note) []NoteRef {
	refs := make([]NoteRef, len(notes))
	for i, n := range notes {
		refs[i] = NoteRef{ID: n.ID, Title: n.Title, SubjectID: n.SubjectID}
	}
	return refs
}

// NewSnapshot assembles a chat data context.
func NewSnapshot(subjects []domain.Subject, tasks []domain.Task, exams []domain.Exam, notes []domain.Note, goals []domain.Goal, events []domain.TimetableEvent, now time.Time) Snapshot {
	return Snapshot{
		Subjects:    subjects,
		Tasks:       tasks,
		Exams:       exams,
		Notes:       NoteRefs(notes),
		Goals:       goals,
		Events:      events,
		CurrentDate: now.Format(time.RFC3339),
	}
}
