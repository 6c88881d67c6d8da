// Package server はタイムシートのJSON APIを提供する。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
	"github.com/k-negishi/smart-timesheet/internal/usecase"
)

// EventStore アプリケーションが保持する予定
type EventStore interface {
	Snapshot() []domain.Event
	Append(events ...domain.Event)
}

// TaskCatalog バックログのタスク一覧
type TaskCatalog interface {
	Tasks() []domain.Task
	Find(id string) (domain.Task, bool)
}

// ScheduleGenerator AIによるスケジュール生成
type ScheduleGenerator interface {
	Execute(ctx context.Context, tasks []domain.Task, target time.Time) ([]domain.Event, error)
}

// Deps Serverの依存
type Deps struct {
	Calendar        calendar.Calendar
	Layout          calendar.DayLayout
	Catalog         TaskCatalog
	Events          EventStore
	Generator       ScheduleGenerator
	Metrics         *Metrics
	Logger          *zap.Logger
	GenerateTimeout time.Duration
	AllowedOrigins  []string
}

// Server HTTP APIのハンドラー群
type Server struct {
	cal             calendar.Calendar
	layout          calendar.DayLayout
	catalog         TaskCatalog
	events          EventStore
	generator       ScheduleGenerator
	metrics         *Metrics
	logger          *zap.Logger
	breaker         *gobreaker.CircuitBreaker
	validate        *validator.Validate
	generateTimeout time.Duration
	allowedOrigins  []string
	now             func() time.Time
	newID           func() string
}

// New Serverを作成
func New(deps Deps) *Server {
	s := &Server{
		cal:             deps.Calendar,
		layout:          deps.Layout,
		catalog:         deps.Catalog,
		events:          deps.Events,
		generator:       deps.Generator,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		validate:        validator.New(),
		generateTimeout: deps.GenerateTimeout,
		allowedOrigins:  deps.AllowedOrigins,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("smart_timesheet")
	}
	if s.generateTimeout <= 0 {
		s.generateTimeout = 60 * time.Second
	}
	if len(s.allowedOrigins) == 0 {
		s.allowedOrigins = []string{"http://localhost:*"}
	}
	if s.layout.HourCount == 0 {
		s.layout = calendar.DefaultDayLayout()
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("サーキットブレーカーの状態が変わりました",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// 設定不備は外部サービスの障害として数えない
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrConfiguration)
		},
	})

	return s
}

// Routes ルーティングとミドルウェアを設定
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.listTasks)
		r.Get("/events", s.listEvents)
		r.Post("/events/place", s.placeTask)
		r.Get("/timesheet", s.timesheet)
		r.Get("/day", s.day)
		r.Get("/month", s.month)
		r.Get("/navigate", s.navigate)
		r.Post("/schedule", s.generateSchedule)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// dateParam クエリのdate（YYYY-MM-DD）。省略時は今日
func (s *Server) dateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return s.cal.Midnight(s.now()), nil
	}
	return s.cal.ParseDate(raw)
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Tasks())
}

func (s *Server) listEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.events.Snapshot())
}

func (s *Server) timesheet(w http.ResponseWriter, r *http.Request) {
	ref, err := s.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.cal.AggregateWeek(ref, s.events.Snapshot()))
}

type dayResponse struct {
	Date       string               `json:"date"`
	Layout     calendar.DayLayout   `json:"layout"`
	Hours      []int                `json:"hours"`
	Placements []calendar.Placement `json:"placements"`
}

func (s *Server) day(w http.ResponseWriter, r *http.Request) {
	day, err := s.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Date:       s.cal.FormatDate(day),
		Layout:     s.layout,
		Hours:      s.layout.Hours(),
		Placements: s.cal.ProjectDay(day, s.events.Snapshot(), s.layout),
	})
}

func (s *Server) month(w http.ResponseWriter, r *http.Request) {
	ref, err := s.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.cal.BuildMonth(ref, s.events.Snapshot()))
}

type navigateResponse struct {
	View calendar.View `json:"view"`
	Date string        `json:"date"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	view, err := calendar.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	current, err := s.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	direction, err := parseDirection(r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, navigateResponse{
		View: view,
		Date: s.cal.FormatDate(s.cal.Navigate(view, current, direction)),
	})
}

// parseDirection "next" "prev" または符号付き整数
func parseDirection(raw string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "next":
		return 1, nil
	case "prev":
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return 0, errors.New("dirは next, prev または 0 以外の整数で指定してください")
	}
	return n, nil
}

type placeRequest struct {
	TaskID string `json:"taskId" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Hour   int    `json:"hour" validate:"min=0,max=23"`
}

func (s *Server) placeTask(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, ok := s.catalog.Find(req.TaskID)
	if !ok {
		writeError(w, http.StatusNotFound, "タスクが見つかりません: "+req.TaskID)
		return
	}
	if req.Hour < s.layout.FirstHour || req.Hour >= s.layout.FirstHour+s.layout.HourCount {
		writeError(w, http.StatusBadRequest, "表示時間帯の外には配置できません")
		return
	}
	day, err := s.cal.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event := usecase.PlaceTask(s.cal, task, day, req.Hour, s.newID)
	s.events.Append(event)
	s.logger.Info("タスクを配置しました", zap.String("taskId", task.ID), zap.Time("start", event.Start))

	writeJSON(w, http.StatusCreated, event)
}

type scheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (s *Server) generateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := s.cal.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.generator == nil {
		s.metrics.ObserveGeneration("unconfigured")
		writeError(w, http.StatusServiceUnavailable, "AIスケジューラが設定されていません")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.generateTimeout)
	defer cancel()

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.generator.Execute(ctx, s.catalog.Tasks(), target)
	})
	if err != nil {
		s.metrics.ObserveGeneration("error")
		s.logger.Error("スケジュール生成に失敗しました", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	events := result.([]domain.Event)
	s.events.Append(events...)
	s.metrics.ObserveGeneration("success")

	writeJSON(w, http.StatusOK, events)
}
