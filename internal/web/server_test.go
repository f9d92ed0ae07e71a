package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/repo"
	"github.com/conorfennell/studydesk/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *repo.Planner) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	planner := repo.NewPlanner(store, time.Now)
	return NewServer(planner, store, nil, ""), planner
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestCreateSubject(t *testing.T) {
	s, planner := newTestServer(t)

	rec := postForm(t, s, "/subjects", url.Values{
		"title": {"Physics"},
		"type":  {"Theory"},
		"color": {"#ff0000"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}

	subjects := planner.Subjects.List()
	if len(subjects) != 1 || subjects[0].Title != "Physics" {
		t.Errorf("Expected the subject stored, got %+v", subjects)
	}
	if !strings.Contains(rec.Body.String(), "Physics") {
		t.Error("Expected the rendered list to include the new subject")
	}
}

func TestCreateSubjectRejectsInvalidDraft(t *testing.T) {
	s, planner := newTestServer(t)

	rec := postForm(t, s, "/subjects", url.Values{
		"title": {""},
		"type":  {"Theory"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a missing title, got %d", rec.Code)
	}
	if len(planner.Subjects.List()) != 0 {
		t.Error("Expected nothing stored on validation failure")
	}
}

func TestDeleteSubjectCascades(t *testing.T) {
	s, planner := newTestServer(t)
	subject := planner.Subjects.Add(domain.SubjectDraft{Title: "Physics", Kind: domain.Theory})
	planner.Tasks.Add(domain.TaskDraft{Title: "Lab report", SubjectID: subject.ID, Deadline: "2025-01-10", Priority: domain.High, Status: domain.TaskPending})
	planner.Notes.Add(domain.NoteDraft{Title: "Optics", SubjectID: subject.ID})

	req := httptest.NewRequest(http.MethodDelete, "/subjects/"+subject.ID, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if len(planner.Subjects.List()) != 0 || len(planner.Tasks.List()) != 0 || len(planner.Notes.List()) != 0 {
		t.Error("Expected the subject and its dependents to be gone")
	}
}

func TestCreateExamRequiresKnownSubject(t *testing.T) {
	s, planner := newTestServer(t)

	rec := postForm(t, s, "/exams", url.Values{
		"title":     {"Midterm"},
		"subjectId": {"missing"},
		"date":      {"2025-02-01"},
		"type":      {"Theory"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown subject, got %d", rec.Code)
	}
	if len(planner.Exams.List()) != 0 {
		t.Error("Expected no exam stored")
	}
}

func TestMoveTaskBetweenColumns(t *testing.T) {
	s, planner := newTestServer(t)
	task := planner.Tasks.Add(domain.TaskDraft{Title: "Essay", Deadline: "2025-01-20", Priority: domain.Low, Status: domain.TaskPending})

	rec := postForm(t, s, "/tasks/status/"+task.ID, url.Values{"status": {"In Progress"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	got, _ := planner.Tasks.Get(task.ID)
	if got.Status != domain.TaskInProgress {
		t.Errorf("Expected status In Progress, got %q", got.Status)
	}
}

func TestMoveUnknownTaskIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := postForm(t, s, "/tasks/status/missing", url.Values{"status": {"Submitted"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestEventInheritsSubjectTitleAndColor(t *testing.T) {
	s, planner := newTestServer(t)
	subject := planner.Subjects.Add(domain.SubjectDraft{Title: "Chemistry", Kind: domain.Practical, Color: "#00ff00"})

	rec := postForm(t, s, "/events", url.Values{
		"title":     {"ignored"},
		"subjectId": {subject.ID},
		"date":      {"2025-01-08"},
		"startTime": {"09:00"},
		"endTime":   {"10:00"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}

	events := planner.Events.List()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Chemistry" || events[0].Color != "#00ff00" {
		t.Errorf("Expected the event to inherit subject title and color, got %+v", events[0])
	}
}

func TestAssistantRoutesWithoutClient(t *testing.T) {
	s, planner := newTestServer(t)
	subject := planner.Subjects.Add(domain.SubjectDraft{Title: "Physics", Kind: domain.Theory})
	note := planner.Notes.Add(domain.NoteDraft{Title: "Optics", SubjectID: subject.ID, Content: "<p>light</p>"})

	paths := []struct {
		path string
		form url.Values
	}{
		{"/assistant/tip", url.Values{}},
		{"/assistant/action/" + note.ID, url.Values{"action": {"summarize"}}},
		{"/assistant/note", url.Values{"topic": {"Optics"}, "subjectId": {subject.ID}}},
		{"/assistant/goals", url.Values{"objective": {"pass finals"}}},
		{"/assistant/chat", url.Values{"question": {"what is due?"}}},
	}
	for _, tt := range paths {
		t.Run(tt.path, func(t *testing.T) {
			rec := postForm(t, s, tt.path, tt.form)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200 with an error fragment, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "not configured") {
				t.Errorf("Expected a not-configured message, got %s", rec.Body)
			}
		})
	}
}

func TestBackupEndpoint(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	planner := repo.NewPlanner(store, time.Now)
	planner.Subjects.Add(domain.SubjectDraft{Title: "Physics", Kind: domain.Theory})
	s := NewServer(planner, store, nil, filepath.Join(t.TempDir(), "backups"))

	rec := postForm(t, s, "/backup", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "failed") {
		t.Errorf("Expected a successful backup, got %s", rec.Body)
	}
}

func TestTimetableRejectsBadDate(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/timetable?date=yesterday", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed date, got %d", rec.Code)
	}
}
