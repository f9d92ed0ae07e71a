package repo

import (
	"time"

	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/identity"
	"github.com/conorfennell/studydesk/internal/storage"
)

// Subjects owns the subject collection. Its Get is used by the view layer
// for denormalized title/color lookups; that path never writes.
type Subjects struct {
	*Collection[domain.Subject]
}

// Add assigns an id, clamps progress into [0,100] and stores the subject.
func (r *Subjects) Add(d domain.SubjectDraft) domain.Subject {
	return r.Collection.Add(domain.Subject{
		ID:         identity.NewID(),
		Title:      d.Title,
		Kind:       d.Kind,
		Instructor: d.Instructor,
		Semester:   d.Semester,
		Progress:   clampProgress(d.Progress),
		Color:      d.Color,
	})
}

// Update replaces the stored subject, clamping progress.
func (r *Subjects) Update(s domain.Subject) {
	s.Progress = clampProgress(s.Progress)
	r.Collection.Update(s)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Tasks owns the task collection.
type Tasks struct {
	*Collection[domain.Task]
}

func (r *Tasks) Add(d domain.TaskDraft) domain.Task {
	return r.Collection.Add(domain.Task{
		ID:        identity.NewID(),
		SubjectID: d.SubjectID,
		Title:     d.Title,
		Deadline:  d.Deadline,
		Priority:  d.Priority,
		Status:    d.Status,
	})
}

// DeleteBySubject removes every task referencing the subject.
func (r *Tasks) DeleteBySubject(subjectID string) {
	var kept []domain.Task
	for _, t := range r.List() {
		if t.SubjectID != subjectID {
			kept = append(kept, t)
		}
	}
	r.ReplaceAll(kept)
}

// Exams owns the exam collection.
type Exams struct {
	*Collection[domain.Exam]
}

func (r *Exams) Add(d domain.ExamDraft) domain.Exam {
	return r.Collection.Add(domain.Exam{
		ID:        identity.NewID(),
		SubjectID: d.SubjectID,
		Title:     d.Title,
		Date:      d.Date,
		Kind:      d.Kind,
	})
}

// DeleteBySubject removes every exam referencing the subject.
func (r *Exams) DeleteBySubject(subjectID string) {
	var kept []domain.Exam
	for _, e := range r.List() {
		if e.SubjectID != subjectID {
			kept = append(kept, e)
		}
	}
	r.ReplaceAll(kept)
}

// Notes owns the note collection and its timestamp rules.
type Notes struct {
	*Collection[domain.Note]
	now func() time.Time
}

// Add assigns an id and sets both timestamps to now.
func (r *Notes) Add(d domain.NoteDraft) domain.Note {
	now := r.now().Format(time.RFC3339)
	return r.Collection.Add(domain.Note{
		ID:           identity.NewID(),
		SubjectID:    d.SubjectID,
		Topic:        d.Topic,
		Title:        d.Title,
		Content:      d.Content,
		CreatedAt:    now,
		LastModified: now,
		FileDataURL:  d.FileDataURL,
		FileName:     d.FileName,
		FileType:     d.FileType,
	})
}

// Update replaces the stored note. CreatedAt is pinned to the stored value
// and LastModified is forced to now, whatever the caller supplied. An
// unknown id is a silent no-op like every other repository.
func (r *Notes) Update(n domain.Note) {
	stored, ok := r.Get(n.ID)
	if !ok {
		return
	}
	n.CreatedAt = stored.CreatedAt
	n.LastModified = r.now().Format(time.RFC3339)
	r.Collection.Update(n)
}

// DeleteBySubject removes every note referencing the subject.
func (r *Notes) DeleteBySubject(subjectID string) {
	var kept []domain.Note
	for _, n := range r.List() {
		if n.SubjectID != subjectID {
			kept = append(kept, n)
		}
	}
	r.ReplaceAll(kept)
}

// Goals owns the goal collection.
type Goals struct {
	*Collection[domain.Goal]
}

func (r *Goals) Add(d domain.GoalDraft) domain.Goal {
	return r.Collection.Add(domain.Goal{
		ID:          identity.NewID(),
		Title:       d.Title,
		Description: d.Description,
		TargetDate:  d.TargetDate,
		Status:      d.Status,
	})
}

// Events owns the timetable event collection.
type Events struct {
	*Collection[domain.TimetableEvent]
}

func (r *Events) Add(d domain.EventDraft) domain.TimetableEvent {
	return r.Collection.Add(domain.TimetableEvent{
		ID:        identity.NewID(),
		SubjectID: d.SubjectID,
		Title:     d.Title,
		Date:      d.Date,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Color:     d.Color,
	})
}

// Planner aggregates the six repositories over one store and coordinates
// cross-collection integrity.
type Planner struct {
	Subjects *Subjects
	Tasks    *Tasks
	Exams    *Exams
	Notes    *Notes
	Goals    *Goals
	Events   *Events
}

// NewPlanner loads every collection from the store. The clock feeds note
// timestamps; production wiring passes time.Now.
func NewPlanner(store *storage.Store, now func() time.Time) *Planner {
	return &Planner{
		Subjects: &Subjects{NewCollection[domain.Subject](store, KeySubjects)},
		Tasks:    &Tasks{NewCollection[domain.Task](store, KeyTasks)},
		Exams:    &Exams{NewCollection[domain.Exam](store, KeyExams)},
		Notes:    &Notes{Collection: NewCollection[domain.Note](store, KeyNotes), now: now},
		Goals:    &Goals{NewCollection[domain.Goal](store, KeyGoals)},
		Events:   &Events{NewCollection[domain.TimetableEvent](store, KeyEvents)},
	}
}

// DeleteSubjectCascade removes the subject and every task, exam and note
// referencing it. Timetable events keep their subjectId even once it points
// at nothing; the front end treats those as custom events. Each collection
// is saved on its own, so the cascade is best effort rather than atomic.
func (p *Planner) DeleteSubjectCascade(subjectID string) {
	p.Subjects.Delete(subjectID)
	p.Tasks.DeleteBySubject(subjectID)
	p.Exams.DeleteBySubject(subjectID)
	p.Notes.DeleteBySubject(subjectID)
}
