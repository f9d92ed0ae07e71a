// Package views computes read-only projections over repository state:
// filters, sorts and groupings consumed by the front end. Everything here is
// a pure function recomputed on demand; the dataset is small enough that
// caching would buy nothing.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/richtext"
)

// FilterAll is the wildcard value for subject, topic and priority filters.
const FilterAll = "all"

// FilterUncategorized matches notes whose topic is empty.
const FilterUncategorized = "__UNCATEGORIZED__"

// DateLayout is the wire format for entity dates.
const DateLayout = "2006-01-02"

// UpcomingExams returns exams dated on or after asOf, ascending by date.
// Comparison is at day granularity: an exam dated exactly asOf is included.
func UpcomingExams(exams []domain.Exam, asOf time.Time) []domain.Exam {
	day := asOf.Format(DateLayout)
	var out []domain.Exam
	for _, e := range exams {
		if e.Date >= day {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// UpcomingTasks returns unsubmitted tasks due on or after asOf, ascending by
// deadline.
func UpcomingTasks(tasks []domain.Task, asOf time.Time) []domain.Task {
	day := asOf.Format(DateLayout)
	var out []domain.Task
	for _, t := range tasks {
		if t.Status != domain.TaskSubmitted && t.Deadline >= day {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline < out[j].Deadline })
	return out
}

// NotesBySubject returns the subject's notes in collection order. Callers
// sort by LastModified when displaying.
func NotesBySubject(notes []domain.Note, subjectID string) []domain.Note {
	var out []domain.Note
	for _, n := range notes {
		if n.SubjectID == subjectID {
			out = append(out, n)
		}
	}
	return out
}

// SubjectTopics is the topic sidebar for one subject.
type SubjectTopics struct {
	Topics           []string
	HasUncategorized bool
}

// TopicsForSubject returns the distinct non-empty topics among the subject's
// notes in ascending lexical order, plus whether any note has no topic.
func TopicsForSubject(notes []domain.Note, subjectID string) SubjectTopics {
	seen := map[string]bool{}
	var st SubjectTopics
	for _, n := range notes {
		if n.SubjectID != subjectID {
			continue
		}
		if n.Topic == "" {
			st.HasUncategorized = true
			continue
		}
		if !seen[n.Topic] {
			seen[n.Topic] = true
			st.Topics = append(st.Topics, n.Topic)
		}
	}
	sort.Strings(st.Topics)
	return st
}

// FilterNotes intersects a case-insensitive search over title and plain-text
// content, a subject filter, and a topic filter (FilterUncategorized matches
// notes with no topic). The result is sorted by LastModified descending.
func FilterNotes(notes []domain.Note, query, subjectFilter, topicFilter string) []domain.Note {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []domain.Note
	for _, n := range notes {
		if subjectFilter != FilterAll && n.SubjectID != subjectFilter {
			continue
		}
		switch topicFilter {
		case FilterAll:
		case FilterUncategorized:
			if n.Topic != "" {
				continue
			}
		default:
			if n.Topic != topicFilter {
				continue
			}
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(richtext.PlainText(n.Content)), query) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastModified > out[j].LastModified })
	return out
}

// FilterTasks intersects subject equality, priority equality and an
// inclusive deadline range. Empty range bounds mean unbounded.
func FilterTasks(tasks []domain.Task, subjectFilter string, priorityFilter string, from, to string) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if subjectFilter != FilterAll && t.SubjectID != subjectFilter {
			continue
		}
		if priorityFilter != FilterAll && string(t.Priority) != priorityFilter {
			continue
		}
		if from != "" && t.Deadline < from {
			continue
		}
		if to != "" && t.Deadline > to {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GroupTasksByStatus buckets tasks into the three board columns, each sorted
// ascending by deadline. Moving a task between columns is a plain Update
// with a new status, not a separate operation.
func GroupTasksByStatus(tasks []domain.Task) map[domain.TaskStatus][]domain.Task {
	groups := map[domain.TaskStatus][]domain.Task{}
	for _, status := range domain.TaskStatuses {
		groups[status] = []domain.Task{}
	}
	for _, t := range tasks {
		groups[t.Status] = append(groups[t.Status], t)
	}
	for status := range groups {
		bucket := groups[status]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Deadline < bucket[j].Deadline })
		groups[status] = bucket
	}
	return groups
}

// CountTasksByStatus returns per-status counts for the dashboard chart.
func CountTasksByStatus(tasks []domain.Task) map[domain.TaskStatus]int {
	counts := map[domain.TaskStatus]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// EventsOnDate returns events on the given calendar day.
func EventsOnDate(events []domain.TimetableEvent, date time.Time) []domain.TimetableEvent {
	day := date.Format(DateLayout)
	var out []domain.TimetableEvent
	for _, e := range events {
		if e.Date == day {
			out = append(out, e)
		}
	}
	return out
}

// EventsInWeek buckets events into the seven days starting at weekStart.
func EventsInWeek(events []domain.TimetableEvent, weekStart time.Time) [7][]domain.TimetableEvent {
	var week [7][]domain.TimetableEvent
	for i := 0; i < 7; i++ {
		week[i] = EventsOnDate(events, weekStart.AddDate(0, 0, i))
	}
	return week
}

// EventsInMonth buckets events by day of month for the given year and month.
func EventsInMonth(events []domain.TimetableEvent, year int, month time.Month) map[int][]domain.TimetableEvent {
	out := map[int][]domain.TimetableEvent{}
	for _, e := range events {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			out[d.Day()] = append(out[d.Day()], e)
		}
	}
	return out
}

// The timetable renders a fixed 07:00-22:00 window.
const (
	windowStartMinute = 7 * 60
	windowMinutes     = 15 * 60
)

// Slot positions an event inside the display window, as percentages of its
// height. Events reaching outside the window are clipped to its edges, not
// hidden.
type Slot struct {
	Top    float64
	Height float64
}

// SlotGeometry maps HH:MM start and end times onto the display window.
// Malformed times yield a zero slot.
func SlotGeometry(startTime, endTime string) Slot {
	start, ok1 := minuteOfDay(startTime)
	end, ok2 := minuteOfDay(endTime)
	if !ok1 || !ok2 || end < start {
		return Slot{}
	}
	top := clampWindow(start - windowStartMinute)
	bottom := clampWindow(end - windowStartMinute)
	return Slot{
		Top:    float64(top) / windowMinutes * 100,
		Height: float64(bottom-top) / windowMinutes * 100,
	}
}

func minuteOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func clampWindow(m int) int {
	if m < 0 {
		return 0
	}
	if m > windowMinutes {
		return windowMinutes
	}
	return m
}
