package domain

// Drafts are entity payloads without an assigned id (and, for notes, without
// timestamps). Create paths take drafts; edit paths take full entities. The
// validate tags are enforced at the presentation boundary, never by the
// repositories themselves.

// SubjectDraft creates a Subject.
type SubjectDraft struct {
	Title      string      `validate:"required"`
	Kind       SubjectKind `validate:"required,oneof=Theory Practical"`
	Instructor string
	Semester   string
	Progress   int
	Color      string
}

// TaskDraft creates a Task. SubjectID may be empty for a general task.
type TaskDraft struct {
	Title     string `validate:"required"`
	SubjectID string
	Deadline  string     `validate:"required,datetime=2006-01-02"`
	Priority  Priority   `validate:"required,oneof=Low Medium High"`
	Status    TaskStatus `validate:"required,oneof=Pending 'In Progress' Submitted"`
}

// ExamDraft creates an Exam. The subject reference is mandatory and its
// existence is checked by the caller before the repository is touched.
type ExamDraft struct {
	Title     string      `validate:"required"`
	SubjectID string      `validate:"required"`
	Date      string      `validate:"required,datetime=2006-01-02"`
	Kind      SubjectKind `validate:"required,oneof=Theory Practical"`
}

// NoteDraft creates a Note. Timestamps are assigned by the repository.
type NoteDraft struct {
	Title       string `validate:"required"`
	SubjectID   string `validate:"required"`
	Topic       string
	Content     string
	FileDataURL string
	FileName    string
	FileType    string
}

// GoalDraft creates a Goal.
type GoalDraft struct {
	Title       string `validate:"required"`
	Description string
	TargetDate  string     `validate:"required,datetime=2006-01-02"`
	Status      GoalStatus `validate:"required,oneof='Not Started' 'In Progress' Completed"`
}

// EventDraft creates a TimetableEvent.
type EventDraft struct {
	Title     string `validate:"required"`
	SubjectID string
	Date      string `validate:"required,datetime=2006-01-02"`
	StartTime string `validate:"required,datetime=15:04"`
	EndTime   string `validate:"required,datetime=15:04"`
	Color     string
}
