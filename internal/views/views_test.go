package views

import (
	"testing"
	"time"

	"github.com/conorfennell/studydesk/internal/domain"
)

func TestUpcomingExams(t *testing.T) {
	exams := []domain.Exam{
		{ID: "1", Title: "Late", Date: "2025-02-01"},
		{ID: "2", Title: "Past", Date: "2025-01-01"},
		{ID: "3", Title: "Today", Date: "2025-01-15"},
	}
	asOf := time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)

	got := UpcomingExams(exams, asOf)
	if len(got) != 2 {
		t.Fatalf("Expected 2 upcoming exams, got %d", len(got))
	}
	if got[0].ID != "3" || got[1].ID != "1" {
		t.Errorf("Expected ascending order [Today Late], got %+v", got)
	}
}

func TestUpcomingExamsIncludesSameDay(t *testing.T) {
	exams := []domain.Exam{{ID: "1", Date: "2025-01-15"}}
	// The clock reads late in the day but comparison is at day granularity.
	asOf := time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC)
	if len(UpcomingExams(exams, asOf)) != 1 {
		t.Error("Expected an exam dated today to count as upcoming")
	}
}

func TestUpcomingTasksExcludesSubmitted(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Deadline: "2025-01-20", Status: domain.TaskSubmitted},
		{ID: "2", Deadline: "2025-01-18", Status: domain.TaskPending},
		{ID: "3", Deadline: "2025-01-10", Status: domain.TaskInProgress},
	}
	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	got := UpcomingTasks(tasks, asOf)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("Expected only the pending future task, got %+v", got)
	}
}

func TestTopicsForSubject(t *testing.T) {
	notes := []domain.Note{
		{ID: "1", SubjectID: "s1", Topic: "Algebra"},
		{ID: "2", SubjectID: "s1", Topic: ""},
		{ID: "3", SubjectID: "s1", Topic: "Algebra"},
		{ID: "4", SubjectID: "s2", Topic: "Optics"},
	}

	st := TopicsForSubject(notes, "s1")
	if len(st.Topics) != 1 || st.Topics[0] != "Algebra" {
		t.Errorf("Expected deduplicated topics [Algebra], got %v", st.Topics)
	}
	if !st.HasUncategorized {
		t.Error("Expected HasUncategorized to be true when a note has no topic")
	}
}

func TestTopicsForSubjectSorted(t *testing.T) {
	notes := []domain.Note{
		{ID: "1", SubjectID: "s1", Topic: "Vectors"},
		{ID: "2", SubjectID: "s1", Topic: "Algebra"},
	}
	st := TopicsForSubject(notes, "s1")
	if len(st.Topics) != 2 || st.Topics[0] != "Algebra" || st.Topics[1] != "Vectors" {
		t.Errorf("Expected sorted topics [Algebra Vectors], got %v", st.Topics)
	}
	if st.HasUncategorized {
		t.Error("Expected HasUncategorized to be false when every note has a topic")
	}
}

func TestFilterNotes(t *testing.T) {
	notes := []domain.Note{
		{ID: "1", SubjectID: "s1", Topic: "Algebra", Title: "Matrices", Content: "<p>Row reduction</p>", LastModified: "2025-01-01T10:00:00Z"},
		{ID: "2", SubjectID: "s1", Topic: "", Title: "Scratch", Content: "<p>misc</p>", LastModified: "2025-01-03T10:00:00Z"},
		{ID: "3", SubjectID: "s2", Topic: "Optics", Title: "Lenses", Content: "<p>Refraction</p>", LastModified: "2025-01-02T10:00:00Z"},
	}

	t.Run("wildcards return everything newest first", func(t *testing.T) {
		got := FilterNotes(notes, "", FilterAll, FilterAll)
		if len(got) != 3 {
			t.Fatalf("Expected all 3 notes, got %d", len(got))
		}
		if got[0].ID != "2" || got[1].ID != "3" || got[2].ID != "1" {
			t.Errorf("Expected LastModified descending, got %+v", got)
		}
	})

	t.Run("query matches plain-text content", func(t *testing.T) {
		got := FilterNotes(notes, "row REDUCTION", FilterAll, FilterAll)
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("Expected the case-insensitive content match, got %+v", got)
		}
	})

	t.Run("subject filter", func(t *testing.T) {
		got := FilterNotes(notes, "", "s2", FilterAll)
		if len(got) != 1 || got[0].ID != "3" {
			t.Errorf("Expected only s2 notes, got %+v", got)
		}
	})

	t.Run("uncategorized topic filter", func(t *testing.T) {
		got := FilterNotes(notes, "", "s1", FilterUncategorized)
		if len(got) != 1 || got[0].ID != "2" {
			t.Errorf("Expected only the topicless note, got %+v", got)
		}
	})

	t.Run("named topic filter", func(t *testing.T) {
		got := FilterNotes(notes, "", FilterAll, "Algebra")
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("Expected only Algebra notes, got %+v", got)
		}
	})
}

func TestFilterTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", SubjectID: "s1", Priority: domain.High, Deadline: "2025-01-10"},
		{ID: "2", SubjectID: "s1", Priority: domain.Low, Deadline: "2025-01-20"},
		{ID: "3", SubjectID: "s2", Priority: domain.High, Deadline: "2025-02-01"},
	}

	t.Run("all filters open", func(t *testing.T) {
		if got := FilterTasks(tasks, FilterAll, FilterAll, "", ""); len(got) != 3 {
			t.Errorf("Expected all 3 tasks, got %d", len(got))
		}
	})

	t.Run("composed filters", func(t *testing.T) {
		got := FilterTasks(tasks, "s1", string(domain.High), "2025-01-01", "2025-01-15")
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("Expected just the high-priority s1 task in range, got %+v", got)
		}
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		got := FilterTasks(tasks, FilterAll, FilterAll, "2025-01-10", "2025-01-20")
		if len(got) != 2 {
			t.Errorf("Expected tasks dated exactly on the bounds to match, got %+v", got)
		}
	})
}

func TestGroupTasksByStatus(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Status: domain.TaskPending, Deadline: "2025-01-20"},
		{ID: "2", Status: domain.TaskPending, Deadline: "2025-01-10"},
		{ID: "3", Status: domain.TaskSubmitted, Deadline: "2025-01-05"},
	}

	groups := GroupTasksByStatus(tasks)
	if len(groups) != 3 {
		t.Fatalf("Expected a bucket per status, got %d", len(groups))
	}
	pending := groups[domain.TaskPending]
	if len(pending) != 2 || pending[0].ID != "2" || pending[1].ID != "1" {
		t.Errorf("Expected pending bucket sorted by deadline, got %+v", pending)
	}
	if len(groups[domain.TaskInProgress]) != 0 {
		t.Errorf("Expected an empty in-progress bucket, got %+v", groups[domain.TaskInProgress])
	}
	if groups[domain.TaskInProgress] == nil {
		t.Error("Expected empty buckets to be non-nil")
	}
}

func TestCountTasksByStatus(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskPending},
		{Status: domain.TaskPending},
		{Status: domain.TaskSubmitted},
	}
	counts := CountTasksByStatus(tasks)
	if counts[domain.TaskPending] != 2 || counts[domain.TaskSubmitted] != 1 || counts[domain.TaskInProgress] != 0 {
		t.Errorf("Expected counts {Pending:2 Submitted:1}, got %v", counts)
	}
}

func TestEventsInWeek(t *testing.T) {
	events := []domain.TimetableEvent{
		{ID: "1", Date: "2025-01-06"}, // Monday
		{ID: "2", Date: "2025-01-09"}, // Thursday
		{ID: "3", Date: "2025-01-13"}, // following Monday
	}
	weekStart := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	week := EventsInWeek(events, weekStart)
	if len(week[0]) != 1 || week[0][0].ID != "1" {
		t.Errorf("Expected Monday's event in slot 0, got %+v", week[0])
	}
	if len(week[3]) != 1 || week[3][0].ID != "2" {
		t.Errorf("Expected Thursday's event in slot 3, got %+v", week[3])
	}
	for i := range week {
		for _, e := range week[i] {
			if e.ID == "3" {
				t.Error("Expected the following week's event to be excluded")
			}
		}
	}
}

func TestEventsInMonth(t *testing.T) {
	events := []domain.TimetableEvent{
		{ID: "1", Date: "2025-01-06"},
		{ID: "2", Date: "2025-01-06"},
		{ID: "3", Date: "2025-02-06"},
		{ID: "4", Date: "bogus"},
	}

	month := EventsInMonth(events, 2025, time.January)
	if len(month) != 1 {
		t.Fatalf("Expected events on a single day, got %d days", len(month))
	}
	if len(month[6]) != 2 {
		t.Errorf("Expected 2 events on the 6th, got %d", len(month[6]))
	}
}

func TestSlotGeometry(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		top        float64
		height     float64
	}{
		{"window start", "07:00", "08:00", 0, 100.0 / 15},
		{"mid window", "10:00", "11:30", 20, 10},
		{"clipped before window", "06:00", "08:00", 0, 100.0 / 15},
		{"clipped after window", "21:00", "23:00", 1400.0 / 15, 100.0 / 15},
		{"entirely outside", "23:00", "23:30", 100, 0},
		{"malformed start", "late", "10:00", 0, 0},
		{"end before start", "11:00", "10:00", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := SlotGeometry(tt.start, tt.end)
			if !almostEqual(slot.Top, tt.top) || !almostEqual(slot.Height, tt.height) {
				t.Errorf("Expected slot {%.4f %.4f}, got {%.4f %.4f}", tt.top, tt.height, slot.Top, slot.Height)
			}
		})
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d > -0.0001 && d < 0.0001
}
