package web

import (
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/studydesk/internal/assistant"
	"github.com/conorfennell/studydesk/internal/backup"
	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/repo"
	"github.com/conorfennell/studydesk/internal/richtext"
	"github.com/conorfennell/studydesk/internal/storage"
	"github.com/conorfennell/studydesk/internal/views"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server. The assistant may be
// nil when no API key is configured; its routes then answer with an error
// fragment instead of crashing.
type Server struct {
	planner   *repo.Planner
	store     *storage.Store
	assistant *assistant.Client
	backupDir string
	router    *http.ServeMux
	validate  *validator.Validate
	templates *template.Template
	now       func() time.Time
}

// NewServer creates and configures a new server.
func NewServer(planner *repo.Planner, store *storage.Store, ai *assistant.Client, backupDir string) *Server {
	// Parse templates
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		planner:   planner,
		store:     store,
		assistant: ai,
		backupDir: backupDir,
		router:    http.NewServeMux(),
		validate:  validator.New(),
		templates: tpl,
		now:       time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())
	s.router.HandleFunc("/dashboard", s.handleDashboard())

	s.router.HandleFunc("/subjects", s.handleSubjects())
	s.router.HandleFunc("/subjects/", s.handleSubjectByID())
	s.router.HandleFunc("/tasks", s.handleTasks())
	s.router.HandleFunc("/tasks/", s.handleTaskByID())
	s.router.HandleFunc("/tasks/status/", s.handleTaskStatus())
	s.router.HandleFunc("/exams", s.handleExams())
	s.router.HandleFunc("/exams/", s.handleExamByID())
	s.router.HandleFunc("/notes", s.handleNotes())
	s.router.HandleFunc("/notes/topics", s.handleTopics())
	s.router.HandleFunc("/notes/", s.handleNoteByID())
	s.router.HandleFunc("/goals", s.handleGoals())
	s.router.HandleFunc("/goals/", s.handleGoalByID())
	s.router.HandleFunc("/timetable", s.handleTimetable())
	s.router.HandleFunc("/events", s.handleEvents())
	s.router.HandleFunc("/events/", s.handleEventByID())

	s.router.HandleFunc("/assistant/tip", s.handleStudyTip())
	s.router.HandleFunc("/assistant/action/", s.handleNoteAction())
	s.router.HandleFunc("/assistant/note", s.handleGenerateNote())
	s.router.HandleFunc("/assistant/goals", s.handleSuggestGoals())
	s.router.HandleFunc("/assistant/chat", s.handleChat())

	s.router.HandleFunc("/backup", s.handleBackup())
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

// renderError shows a non-fatal, user-visible message fragment.
func (s *Server) renderError(w http.ResponseWriter, msg string) {
	s.render(w, "error", map[string]interface{}{"Message": msg})
}

func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.render(w, "index", nil)
	}
}

// subjectTitle resolves a subject id to its title for denormalized display.
func (s *Server) subjectTitle(id string) string {
	if subject, ok := s.planner.Subjects.Get(id); ok {
		return subject.Title
	}
	return ""
}

func (s *Server) handleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := s.now()
		tasks := s.planner.Tasks.List()
		data := map[string]interface{}{
			"UpcomingExams": views.UpcomingExams(s.planner.Exams.List(), now),
			"UpcomingTasks": views.UpcomingTasks(tasks, now),
			"StatusCounts":  views.CountTasksByStatus(tasks),
			"SubjectCount":  len(s.planner.Subjects.List()),
		}
		s.render(w, "dashboard", data)
	}
}

// handleSubjects handles both GET and POST for the subject list.
func (s *Server) handleSubjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderSubjectList(w)
		case http.MethodPost:
			draft := domain.SubjectDraft{
				Title:      r.PostFormValue("title"),
				Kind:       domain.SubjectKind(r.PostFormValue("type")),
				Instructor: r.PostFormValue("instructor"),
				Semester:   r.PostFormValue("semester"),
				Progress:   atoiOrZero(r.PostFormValue("progress")),
				Color:      r.PostFormValue("color"),
			}
			if err := s.validate.Struct(draft); err != nil {
				http.Error(w, "Invalid subject", http.StatusBadRequest)
				return
			}
			s.planner.Subjects.Add(draft)
			s.renderSubjectList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleSubjectByID updates or cascade-deletes one subject.
func (s *Server) handleSubjectByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/subjects/")
		switch r.Method {
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			subject := domain.Subject{
				ID:         id,
				Title:      r.PostFormValue("title"),
				Kind:       domain.SubjectKind(r.PostFormValue("type")),
				Instructor: r.PostFormValue("instructor"),
				Semester:   r.PostFormValue("semester"),
				Progress:   atoiOrZero(r.PostFormValue("progress")),
				Color:      r.PostFormValue("color"),
			}
			s.planner.Subjects.Update(subject)
			s.renderSubjectList(w)
		case http.MethodDelete:
			// Deleting a subject fans out to its tasks, exams and notes.
			s.planner.DeleteSubjectCascade(id)
			s.renderSubjectList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderSubjectList(w http.ResponseWriter) {
	s.render(w, "subject_list", map[string]interface{}{
		"Subjects": s.planner.Subjects.List(),
	})
}

// taskView pairs a task with its denormalized subject title.
type taskView struct {
	domain.Task
	SubjectTitle string
}

func (s *Server) taskViews(tasks []domain.Task) []taskView {
	out := make([]taskView, len(tasks))
	for i, t := range tasks {
		out[i] = taskView{Task: t, SubjectTitle: s.subjectTitle(t.SubjectID)}
	}
	return out
}

// handleTasks renders the filtered board or creates a task.
func (s *Server) handleTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderTaskBoard(w, r)
		case http.MethodPost:
			draft := domain.TaskDraft{
				Title:     r.PostFormValue("title"),
				SubjectID: r.PostFormValue("subjectId"),
				Deadline:  r.PostFormValue("deadline"),
				Priority:  domain.Priority(r.PostFormValue("priority")),
				Status:    domain.TaskStatus(r.PostFormValue("status")),
			}
			if draft.Status == "" {
				draft.Status = domain.TaskPending
			}
			if err := s.validate.Struct(draft); err != nil {
				http.Error(w, "Invalid task", http.StatusBadRequest)
				return
			}
			s.planner.Tasks.Add(draft)
			s.renderTaskBoard(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderTaskBoard(w http.ResponseWriter, r *http.Request) {
	subjectFilter := queryOrAll(r, "subject")
	priorityFilter := queryOrAll(r, "priority")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	filtered := views.FilterTasks(s.planner.Tasks.List(), subjectFilter, priorityFilter, from, to)
	groups := views.GroupTasksByStatus(filtered)

	type column struct {
		Status domain.TaskStatus
		Tasks  []taskView
	}
	columns := make([]column, 0, len(domain.TaskStatuses))
	for _, status := range domain.TaskStatuses {
		columns = append(columns, column{Status: status, Tasks: s.taskViews(groups[status])})
	}
	s.render(w, "task_board", map[string]interface{}{
		"Columns":  columns,
		"Subjects": s.planner.Subjects.List(),
	})
}

func (s *Server) handleTaskByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		switch r.Method {
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			s.planner.Tasks.Update(domain.Task{
				ID:        id,
				SubjectID: r.PostFormValue("subjectId"),
				Title:     r.PostFormValue("title"),
				Deadline:  r.PostFormValue("deadline"),
				Priority:  domain.Priority(r.PostFormValue("priority")),
				Status:    domain.TaskStatus(r.PostFormValue("status")),
			})
			s.renderTaskBoard(w, r)
		case http.MethodDelete:
			s.planner.Tasks.Delete(id)
			s.renderTaskBoard(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleTaskStatus moves a task between board columns: a single update
// setting the status, nothing more.
func (s *Server) handleTaskStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/tasks/status/")
		task, ok := s.planner.Tasks.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		task.Status = domain.TaskStatus(r.PostFormValue("status"))
		s.planner.Tasks.Update(task)
		s.renderTaskBoard(w, r)
	}
}

// examView pairs an exam with its denormalized subject title.
type examView struct {
	domain.Exam
	SubjectTitle string
}

func (s *Server) handleExams() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderExamList(w)
		case http.MethodPost:
			draft := domain.ExamDraft{
				Title:     r.PostFormValue("title"),
				SubjectID: r.PostFormValue("subjectId"),
				Date:      r.PostFormValue("date"),
				Kind:      domain.SubjectKind(r.PostFormValue("type")),
			}
			if err := s.validate.Struct(draft); err != nil {
				http.Error(w, "Invalid exam", http.StatusBadRequest)
				return
			}
			// Exams must reference an existing subject; the repository does
			// not check foreign keys, so the boundary does.
			if _, ok := s.planner.Subjects.Get(draft.SubjectID); !ok {
				http.Error(w, "Unknown subject", http.StatusBadRequest)
				return
			}
			s.planner.Exams.Add(draft)
			s.renderExamList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleExamByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/exams/")
		switch r.Method {
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			s.planner.Exams.Update(domain.Exam{
				ID:        id,
				SubjectID: r.PostFormValue("subjectId"),
				Title:     r.PostFormValue("title"),
				Date:      r.PostFormValue("date"),
				Kind:      domain.SubjectKind(r.PostFormValue("type")),
			})
			s.renderExamList(w)
		case http.MethodDelete:
			s.planner.Exams.Delete(id)
			s.renderExamList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderExamList(w http.ResponseWriter) {
	upcoming := views.UpcomingExams(s.planner.Exams.List(), s.now())
	examViews := make([]examView, len(upcoming))
	for i, e := range upcoming {
		examViews[i] = examView{Exam: e, SubjectTitle: s.subjectTitle(e.SubjectID)}
	}
	s.render(w, "exam_list", map[string]interface{}{
		"Exams":    examViews,
		"Subjects": s.planner.Subjects.List(),
	})
}

// noteDraftFromForm decodes a note payload. When the form carries an
// attached document and no content, the document is converted to markup; if
// the format is opaque the blob stays as an attachment only.
func noteDraftFromForm(r *http.Request) domain.NoteDraft {
	draft := domain.NoteDraft{
		Title:       r.PostFormValue("title"),
		SubjectID:   r.PostFormValue("subjectId"),
		Topic:       r.PostFormValue("topic"),
		Content:     r.PostFormValue("content"),
		FileDataURL: r.PostFormValue("fileDataUrl"),
		FileName:    r.PostFormValue("fileName"),
		FileType:    r.PostFormValue("fileType"),
	}
	if draft.Content == "" && draft.FileDataURL != "" {
		if blob, ok := decodeDataURL(draft.FileDataURL); ok {
			if markup, err := richtext.ExtractDocument(blob, draft.FileType); err == nil {
				draft.Content = markup
			}
		}
	}
	return draft
}

func decodeDataURL(dataURL string) ([]byte, bool) {
	_, encoded, found := strings.Cut(dataURL, "base64,")
	if !found {
		return nil, false
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return blob, true
}

func (s *Server) handleNotes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderNoteList(w, r)
		case http.MethodPost:
			draft := noteDraftFromForm(r)
			if err := s.validate.Struct(draft); err != nil {
				http.Error(w, "Invalid note", http.StatusBadRequest)
				return
			}
			if _, ok := s.planner.Subjects.Get(draft.SubjectID); !ok {
				http.Error(w, "Unknown subject", http.StatusBadRequest)
				return
			}
			s.planner.Notes.Add(draft)
			s.renderNoteList(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderNoteList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	subjectFilter := queryOrAll(r, "subject")
	topicFilter := queryOrAll(r, "topic")
	notes := views.FilterNotes(s.planner.Notes.List(), query, subjectFilter, topicFilter)
	s.render(w, "note_list", map[string]interface{}{
		"Notes":    notes,
		"Subjects": s.planner.Subjects.List(),
	})
}

// handleTopics renders the topic sidebar for one subject.
func (s *Server) handleTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := r.URL.Query().Get("subject")
		topics := views.TopicsForSubject(s.planner.Notes.List(), subjectID)
		s.render(w, "topic_list", map[string]interface{}{
			"SubjectTitle":     s.subjectTitle(subjectID),
			"Topics":           topics.Topics,
			"HasUncategorized": topics.HasUncategorized,
		})
	}
}

func (s *Server) handleNoteByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/notes/")
		switch r.Method {
		case http.MethodGet:
			note, ok := s.planner.Notes.Get(id)
			if !ok {
				http.NotFound(w, r)
				return
			}
			s.render(w, "note_detail", map[string]interface{}{
				"Note":         note,
				"ContentHTML":  template.HTML(note.Content),
				"SubjectTitle": s.subjectTitle(note.SubjectID),
			})
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			s.planner.Notes.Update(domain.Note{
				ID:          id,
				SubjectID:   r.PostFormValue("subjectId"),
				Topic:       r.PostFormValue("topic"),
				Title:       r.PostFormValue("title"),
				Content:     r.PostFormValue("content"),
				FileDataURL: r.PostFormValue("fileDataUrl"),
				FileName:    r.PostFormValue("fileName"),
				FileType:    r.PostFormValue("fileType"),
			})
			s.renderNoteList(w, r)
		case http.MethodDelete:
			s.planner.Notes.Delete(id)
			s.renderNoteList(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleGoals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderGoalList(w)
		case http.MethodPost:
			draft := domain.GoalDraft{
				Title:       r.PostFormValue("title"),
				Description: r.PostFormValue("description"),
				TargetDate:  r.PostFormValue("targetDate"),
				Status:      domain.GoalStatus(r.PostFormValue("status")),
			}
			if draft.Status == "" {
				draft.Status = domain.GoalNotStarted
			}
			if err := s.validate.Struct(draft); err != nil {
				http.Error(w, "Invalid goal", http.StatusBadRequest)
				return
			}
			s.planner.Goals.Add(draft)
			s.renderGoalList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleGoalByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/goals/")
		switch r.Method {
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			s.planner.Goals.Update(domain.Goal{
				ID:          id,
				Title:       r.PostFormValue("title"),
				Description: r.PostFormValue("description"),
				TargetDate:  r.PostFormValue("targetDate"),
				Status:      domain.GoalStatus(r.PostFormValue("status")),
			})
			s.renderGoalList(w)
		case http.MethodDelete:
			s.planner.Goals.Delete(id)
			s.renderGoalList(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderGoalList(w http.ResponseWriter) {
	s.render(w, "goal_list", map[string]interface{}{
		"Goals": s.planner.Goals.List(),
	})
}

// eventBox positions an event within the day column.
type eventBox struct {
	domain.TimetableEvent
	Slot views.Slot
}

func (s *Server) eventBoxes(events []domain.TimetableEvent) []eventBox {
	boxes := make([]eventBox, len(events))
	for i, e := range events {
		boxes[i] = eventBox{TimetableEvent: e, Slot: views.SlotGeometry(e.StartTime, e.EndTime)}
	}
	return boxes
}

// handleTimetable renders the day, week or month view around a focus date.
func (s *Server) handleTimetable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		focus := s.now()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse(views.DateLayout, raw)
			if err != nil {
				http.Error(w, "Invalid date", http.StatusBadRequest)
				return
			}
			focus = parsed
		}
		events := s.planner.Events.List()

		switch r.URL.Query().Get("view") {
		case "week":
			// Weeks start on Monday.
			offset := (int(focus.Weekday()) + 6) % 7
			weekStart := focus.AddDate(0, 0, -offset)
			week := views.EventsInWeek(events, weekStart)
			type dayColumn struct {
				Date   string
				Events []eventBox
			}
			columns := make([]dayColumn, 7)
			for i := range week {
				columns[i] = dayColumn{
					Date:   weekStart.AddDate(0, 0, i).Format(views.DateLayout),
					Events: s.eventBoxes(week[i]),
				}
			}
			s.render(w, "timetable_week", map[string]interface{}{"Days": columns})
		case "month":
			s.render(w, "timetable_month", map[string]interface{}{
				"Year":  focus.Year(),
				"Month": focus.Month().String(),
				"Days":  views.EventsInMonth(events, focus.Year(), focus.Month()),
			})
		default:
			s.render(w, "timetable_day", map[string]interface{}{
				"Date":   focus.Format(views.DateLayout),
				"Events": s.eventBoxes(views.EventsOnDate(events, focus)),
			})
		}
	}
}

func (s *Server) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		draft := domain.EventDraft{
			Title:     r.PostFormValue("title"),
			SubjectID: r.PostFormValue("subjectId"),
			Date:      r.PostFormValue("date"),
			StartTime: r.PostFormValue("startTime"),
			EndTime:   r.PostFormValue("endTime"),
			Color:     r.PostFormValue("color"),
		}
		// Subject events inherit the subject's title and color.
		if subject, ok := s.planner.Subjects.Get(draft.SubjectID); ok {
			draft.Title = subject.Title
			draft.Color = subject.Color
		}
		if err := s.validate.Struct(draft); err != nil {
			http.Error(w, "Invalid event", http.StatusBadRequest)
			return
		}
		s.planner.Events.Add(draft)
		s.handleTimetable()(w, r)
	}
}

func (s *Server) handleEventByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/events/")
		switch r.Method {
		case http.MethodPut:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			s.planner.Events.Update(domain.TimetableEvent{
				ID:        id,
				SubjectID: r.PostFormValue("subjectId"),
				Title:     r.PostFormValue("title"),
				Date:      r.PostFormValue("date"),
				StartTime: r.PostFormValue("startTime"),
				EndTime:   r.PostFormValue("endTime"),
				Color:     r.PostFormValue("color"),
			})
			s.handleTimetable()(w, r)
		case http.MethodDelete:
			s.planner.Events.Delete(id)
			s.handleTimetable()(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleStudyTip renders the dashboard advice line. The submit control is
// disabled client-side while a request is in flight, so there is never a
// second concurrent call for the same context.
func (s *Server) handleStudyTip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.assistant == nil {
			s.renderError(w, "Assistant is not configured. Set an API key to enable it.")
			return
		}
		now := s.now()
		tip, err := s.assistant.StudyTip(r.Context(),
			views.UpcomingExams(s.planner.Exams.List(), now),
			views.UpcomingTasks(s.planner.Tasks.List(), now),
		)
		if err != nil {
			log.Printf("Error generating study tip: %v", err)
			s.renderError(w, "Could not fetch a study tip right now. Please try again.")
			return
		}
		s.render(w, "study_tip", map[string]interface{}{"Tip": tip})
	}
}

// handleNoteAction runs summarize/quiz/explain over one note.
func (s *Server) handleNoteAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.assistant == nil {
			s.renderError(w, "Assistant is not configured. Set an API key to enable it.")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/assistant/action/")
		note, ok := s.planner.Notes.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		action := assistant.NoteAction(r.PostFormValue("action"))
		result, err := s.assistant.NoteActionResult(r.Context(), action, note.Content)
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyNote) {
				s.renderError(w, "This note appears to be empty and cannot be processed.")
				return
			}
			log.Printf("Error running note action %s: %v", action, err)
			s.renderError(w, "An error occurred while communicating with the assistant. Please try again.")
			return
		}
		s.render(w, "assistant_response", map[string]interface{}{"Result": template.HTML(result)})
	}
}

// handleGenerateNote creates a note from a generated study text.
func (s *Server) handleGenerateNote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.assistant == nil {
			s.renderError(w, "Assistant is not configured. Set an API key to enable it.")
			return
		}
		topic := strings.TrimSpace(r.PostFormValue("topic"))
		subjectID := r.PostFormValue("subjectId")
		if topic == "" {
			http.Error(w, "Topic cannot be empty", http.StatusBadRequest)
			return
		}
		if _, ok := s.planner.Subjects.Get(subjectID); !ok {
			http.Error(w, "Unknown subject", http.StatusBadRequest)
			return
		}
		title, body, err := s.assistant.GenerateNote(r.Context(), topic)
		if err != nil {
			log.Printf("Error generating note: %v", err)
			s.renderError(w, "Could not generate the note. Please try again.")
			return
		}
		s.planner.Notes.Add(domain.NoteDraft{
			Title:     title,
			SubjectID: subjectID,
			Content:   body,
		})
		s.renderNoteList(w, r)
	}
}

// handleSuggestGoals renders SMART goal suggestions for review; nothing is
// stored until the user accepts a suggestion through the goals endpoint.
func (s *Server) handleSuggestGoals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.assistant == nil {
			s.renderError(w, "Assistant is not configured. Set an API key to enable it.")
			return
		}
		objective := strings.TrimSpace(r.PostFormValue("objective"))
		if objective == "" {
			http.Error(w, "Objective cannot be empty", http.StatusBadRequest)
			return
		}
		drafts, err := s.assistant.SuggestGoals(r.Context(), objective)
		if err != nil {
			log.Printf("Error suggesting goals: %v", err)
			s.renderError(w, "Failed to generate goal suggestions. Please try again.")
			return
		}
		s.render(w, "goal_suggestions", map[string]interface{}{"Suggestions": drafts})
	}
}

// handleChat answers one question against the current data snapshot.
func (s *Server) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.assistant == nil {
			s.renderError(w, "Assistant is not configured. Set an API key to enable it.")
			return
		}
		question := strings.TrimSpace(r.PostFormValue("question"))
		if question == "" {
			http.Error(w, "Question cannot be empty", http.StatusBadRequest)
			return
		}
		snap := assistant.NewSnapshot(
			s.planner.Subjects.List(),
			s.planner.Tasks.List(),
			s.planner.Exams.List(),
			s.planner.Notes.List(),
			s.planner.Goals.List(),
			s.planner.Events.List(),
			s.now(),
		)
		answer, err := s.assistant.Chat(r.Context(), question, snap)
		if err != nil {
			log.Printf("Chat error: %v", err)
			s.renderError(w, "Sorry, I'm having trouble connecting right now. Please try again later.")
			return
		}
		s.render(w, "chat_message", map[string]interface{}{
			"Question": question,
			"Answer":   answer,
		})
	}
}

// handleBackup commits a snapshot of every collection to the backup repo.
func (s *Server) handleBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.backupDir == "" {
			s.renderError(w, "No backup directory configured.")
			return
		}
		hash, err := backup.Snapshot(s.store, s.backupDir, s.now())
		if err != nil {
			log.Printf("Backup error: %v", err)
			s.renderError(w, "Backup failed. Please try again.")
			return
		}
		s.render(w, "backup_result", map[string]interface{}{"Hash": hash})
	}
}

func queryOrAll(r *http.Request, key string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return views.FilterAll
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
