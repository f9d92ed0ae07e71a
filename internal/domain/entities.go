// Package domain defines the six record kinds the planner manages and the
// draft shapes used to create them.
package domain

// SubjectKind distinguishes theory from practical subjects. Exams reuse it.
type SubjectKind string

const (
	Theory    SubjectKind = "Theory"
	Practical SubjectKind = "Practical"
)

// TaskStatus is a free three-state machine; any transition is allowed.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskSubmitted  TaskStatus = "Submitted"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskSubmitted}

// Priority of a task.
type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// GoalStatus is a free three-state machine; any transition is allowed.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "Not Started"
	GoalInProgress GoalStatus = "In Progress"
	GoalCompleted  GoalStatus = "Completed"
)

// Entity is any record with a collection-unique identifier.
type Entity interface {
	EntityID() string
}

// Subject is a course of study. Tasks, exams, notes and timetable events may
// reference it by id.
type Subject struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Kind       SubjectKind `json:"type"`
	Instructor string      `json:"instructor,omitempty"`
	Semester   string      `json:"semester,omitempty"`
	Progress   int         `json:"progress"` // 0-100
	Color      string      `json:"color"`
}

func (s Subject) EntityID() string { return s.ID }

// Task is a piece of work with a deadline. An empty SubjectID means a
// general task not tied to any subject.
type Task struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subjectId,omitempty"`
	Title     string     `json:"title"`
	Deadline  string     `json:"deadline"` // YYYY-MM-DD
	Priority  Priority   `json:"priority"`
	Status    TaskStatus `json:"status"`
}

func (t Task) EntityID() string { return t.ID }

// Exam always belongs to a subject.
type Exam struct {
	ID        string      `json:"id"`
	SubjectID string      `json:"subjectId"`
	Title     string      `json:"title"`
	Date      string      `json:"date"` // YYYY-MM-DD
	Kind      SubjectKind `json:"type"`
}

func (e Exam) EntityID() string { return e.ID }

// Note holds rich-text (HTML) study content for a subject, optionally
// grouped under a topic and optionally carrying an attached file.
type Note struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subjectId"`
	Topic        string `json:"topic,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	CreatedAt    string `json:"createdAt"`    // RFC3339, set once
	LastModified string `json:"lastModified"` // RFC3339, bumped on every update
	FileDataURL  string `json:"fileDataUrl,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileType     string `json:"fileType,omitempty"`
}

func (n Note) EntityID() string { return n.ID }

// Goal is a personal objective with no cross-entity relationships.
type Goal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  string     `json:"targetDate"` // YYYY-MM-DD
	Status      GoalStatus `json:"status"`
}

func (g Goal) EntityID() string { return g.ID }

// TimetableEvent is a calendar entry. An empty SubjectID means a custom
// event. Events are not removed when their subject is deleted.
type TimetableEvent struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId,omitempty"`
	Title     string `json:"title"`
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM
	Color     string `json:"color"`
}

func (e TimetableEvent) EntityID() string { return e.ID }
