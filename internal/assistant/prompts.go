package assistant

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/conorfennell/studydesk/internal/domain"
)

const (
	summarizeSystem = "You are an expert academic assistant. Your task is to summarize the provided text accurately and concisely into a few key bullet points. The summary must be based ONLY on the provided text. Do not add any information not present in the text. Format your response in HTML using <ul> and <li> tags."
	quizSystem      = "You are a teacher creating a study quiz. Based ONLY on the provided text, generate a short, 3-question multiple-choice quiz to test understanding. Format the response in HTML. Provide the questions, options (using <ul> and <li>), and then list the correct answers clearly at the end under a heading 'Correct Answers'."
	explainSystem   = "You are a helpful tutor. Explain the core concepts from the provided text in a simple and easy-to-understand way, as if you were explaining it to a beginner. Your explanation must be based ONLY on the provided text."
)

// BuildNoteActionPrompt returns the system instruction and prompt for a note
// action over the note's plain text.
func BuildNoteActionPrompt(action NoteAction, plainText string) (system, prompt string, err error) {
	switch action {
	case ActionSummarize:
		return summarizeSystem, "Please summarize the following note content:\n\n" + plainText, nil
	case ActionQuiz:
		return quizSystem, "Please create a short quiz based on the following note content:\n\n" + plainText, nil
	case ActionExplain:
		return explainSystem, "Please explain the core concepts from the following note content in a simple way:\n\n" + plainText, nil
	default:
		return "", "", fmt.Errorf("assistant: unknown note action %q", action)
	}
}

// BuildGoalPrompt asks for three SMART goal suggestions for an objective.
func BuildGoalPrompt(objective string) string {
	return fmt.Sprintf("Based on the objective %q, generate 3 distinct SMART (Specific, Measurable, Achievable, Relevant, Time-bound) goal suggestions for a student. For the targetDate, suggest a realistic date from today in YYYY-MM-DD format.", objective)
}

// GoalSuggestionSchema constrains the goal response to
// {goals:[{title,description,targetDate}]}.
func GoalSuggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"goals": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"targetDate":  {Type: genai.TypeString},
					},
				},
			},
		},
	}
}

// ParseGoalSuggestions decodes a schema-constrained goal response into goal
// drafts. Suggestions start life as Not Started.
func ParseGoalSuggestions(raw []byte) ([]domain.GoalDraft, error) {
	var resp struct {
		Goals []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			TargetDate  string `json:"targetDate"`
		} `json:"goals"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("assistant: invalid goal response: %w", err)
	}
	if len(resp.Goals) == 0 {
		return nil, fmt.Errorf("assistant: no goals in response")
	}
	drafts := make([]domain.GoalDraft, len(resp.Goals))
	for i, g := range resp.Goals {
		drafts[i] = domain.GoalDraft{
			Title:       g.Title,
			Description: g.Description,
			TargetDate:  g.TargetDate,
			Status:      domain.GoalNotStarted,
		}
	}
	return drafts, nil
}

// BuildNotePrompt asks for a generated study note. The response must be HTML
// starting with an <h1> title so the caller can split the title off.
func BuildNotePrompt(topic string) string {
	return fmt.Sprintf("Generate a detailed, well-structured study note about %q. The note should be formatted in HTML, using headings (like <h2> and <h3>), lists (<ul>, <ol>, <li>), and bold text (<b> or <strong>) to organize the information clearly for a student. Start the note with an <h1> tag containing a suitable title for the topic. Do not include any other text before the initial <h1> tag.", topic)
}

// BuildChatPrompt combines the serialized data context with the user's
// question.
func BuildChatPrompt(question, contextJSON string) string {
	return fmt.Sprintf(`You are a helpful student assistant integrated into a study planner app. Your responses must be concise and directly answer the user's question based on the provided JSON data. Do not mention that you are an AI.

Here is the user's data context:
%s

User's question: %q

Your answer:`, contextJSON, question)
}

// BuildStudyTipPrompt asks for a short line of dashboard advice grounded in
// the upcoming exams and unfinished tasks.
func BuildStudyTipPrompt(exams []domain.Exam, tasks []domain.Task) (string, error) {
	examJSON, err := json.Marshal(exams)
	if err != nil {
		return "", fmt.Errorf("assistant: failed to serialize exams: %w", err)
	}
	taskJSON, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("assistant: failed to serialize tasks: %w", err)
	}
	return fmt.Sprintf(`Here is a student's current workload:
- Upcoming Exams: %s
- Pending Tasks: %s

Based on this data, provide one or two sentences of encouraging and actionable advice for the student. Be specific and positive. For example, mention an upcoming exam or a subject with low progress.`, examJSON, taskJSON), nil
}
