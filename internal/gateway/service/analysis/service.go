// Package analysis runs submissions in the background and tracks them as
// tasks until their report is stored.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"intentional/internal/gateway/repository/artifact"
	"intentional/internal/gateway/repository/task"
	"intentional/internal/pipeline"
	"intentional/internal/render"
	"intentional/internal/types"
)

// Analyzer produces the report of a normalized submission.
type Analyzer interface {
	RunInput(ctx context.Context, in *pipeline.Input) (*types.OverallReport, error)
}

// Responder answers follow-up questions.
type Responder interface {
	Respond(ctx context.Context, message string, cc *pipeline.ChatContext) (string, error)
}

// Record is what gets stored for a completed task.
type Record struct {
	Context types.AnalysisContext `json:"context"`
	Report  types.OverallReport   `json:"report"`
}

const shutdownMessage = "analysis interrupted by shutdown"

var ErrClosed = errors.New("analysis service is closed")

type Service struct {
	analyzer  Analyzer
	chat      Responder
	tasks     task.Store
	artifacts artifact.Store
	log       *zap.Logger
	newID     func() string

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Service)

// WithArtifacts keeps a JSON and HTML copy of every completed report in store.
func WithArtifacts(store artifact.Store) Option {
	return func(s *Service) { s.artifacts = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithIDs replaces the uuid generator used for task and result ids.
func WithIDs(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func New(analyzer Analyzer, chat Responder, tasks task.Store, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		analyzer: analyzer,
		chat:     chat,
		tasks:    tasks,
		log:      zap.NewNop(),
		newID:    uuid.NewString,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub and starts its run. Validation failures are
// returned here; everything later is reported through Status.
func (s *Service) Submit(ctx context.Context, sub types.Submission) (task.Task, error) {
	in, err := pipeline.Normalize(sub)
	if err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return task.Task{}, ErrClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	t := task.Task{ID: s.newID(), Status: task.StatusProcessing, Message: task.MessageProcessing}
	if err := s.tasks.Create(ctx, t); err != nil {
		s.wg.Done()
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}
	go func() {
		defer s.wg.Done()
		s.execute(s.ctx, t.ID, in)
	}()
	return t, nil
}

func (s *Service) execute(ctx context.Context, taskID string, in *pipeline.Input) {
	log := s.log.With(zap.String("task_id", taskID))
	report, err := s.analyzer.RunInput(ctx, in)
	// Bookkeeping must land even when ctx was cancelled.
	store := context.WithoutCancel(ctx)
	if err != nil {
		message, retryable := failure(err)
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			message, retryable = shutdownMessage, true
		}
		log.Warn("analysis failed", zap.Error(err), zap.Bool("retryable", retryable))
		if ferr := s.tasks.Fail(store, taskID, message, retryable); ferr != nil {
			log.Error("record task failure", zap.Error(ferr))
		}
		return
	}

	rec := Record{Context: in.Context, Report: *report}
	raw, err := json.Marshal(rec)
	if err != nil {
		log.Error("encode report", zap.Error(err))
		if ferr := s.tasks.Fail(store, taskID, fmt.Sprintf("encode report: %v", err), false); ferr != nil {
			log.Error("record task failure", zap.Error(ferr))
		}
		return
	}
	resultID := s.newID()
	// Copies go first so a completed task always has them.
	s.copyArtifacts(store, resultID, report, log)
	if err := s.tasks.Complete(store, taskID, resultID, raw); err != nil {
		log.Error("store result", zap.Error(err))
		if ferr := s.tasks.Fail(store, taskID, "could not store result", true); ferr != nil {
			log.Error("record task failure", zap.Error(ferr))
		}
		return
	}
	log.Info("analysis completed", zap.String("result_id", resultID), zap.Float64("score", report.Score))
}

func (s *Service) copyArtifacts(ctx context.Context, resultID string, report *types.OverallReport, log *zap.Logger) {
	if s.artifacts == nil {
		return
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = s.artifacts.Put(ctx, resultID, artifact.ReportJSON, raw)
	}
	if err != nil {
		log.Warn("copy report json", zap.Error(err))
	}
	page, err := render.ReportHTML(report)
	if err == nil {
		err = s.artifacts.Put(ctx, resultID, artifact.ReportHTML, page)
	}
	if err != nil {
		log.Warn("copy report html", zap.Error(err))
	}
}

// failure maps a run error onto the message and retryable flag of a failed task.
func failure(err error) (string, bool) {
	var pErr *pipeline.PipelineError
	if errors.As(err, &pErr) {
		return pErr.Error(), pErr.Retryable()
	}
	return err.Error(), errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) Status(ctx context.Context, taskID string) (task.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return task.Task{}, task.ErrNotFound
	}
	return s.tasks.Get(ctx, taskID)
}

// Result loads a stored record. Unknown ids return task.ErrNotFound.
func (s *Service) Result(ctx context.Context, resultID string) (*Record, error) {
	raw, err := s.tasks.Result(ctx, strings.TrimSpace(resultID))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", resultID, err)
	}
	return &rec, nil
}

// ResultHTML returns the rendered report, preferring the stored copy.
func (s *Service) ResultHTML(ctx context.Context, resultID string) ([]byte, error) {
	if s.artifacts != nil {
		page, err := s.artifacts.Get(ctx, resultID, artifact.ReportHTML)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, artifact.ErrNotFound) {
			s.log.Warn("read report html", zap.String("result_id", resultID), zap.Error(err))
		}
	}
	rec, err := s.Result(ctx, resultID)
	if err != nil {
		return nil, err
	}
	return render.ReportHTML(&rec.Report)
}

// ReportCopy is one stored copy of a report. URL is empty when the artifact
// store cannot hand out links.
type ReportCopy struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Artifacts lists the stored copies of a result with their download links.
// A known result without an artifact store has no copies.
func (s *Service) Artifacts(ctx context.Context, resultID string) ([]ReportCopy, error) {
	resultID = strings.TrimSpace(resultID)
	if _, err := s.tasks.Result(ctx, resultID); err != nil {
		return nil, err
	}
	out := []ReportCopy{}
	if s.artifacts == nil {
		return out, nil
	}
	names, err := s.artifacts.List(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	for _, name := range names {
		url, err := s.artifacts.GetURL(ctx, resultID, name)
		if err != nil {
			return nil, fmt.Errorf("artifact url %s: %w", name, err)
		}
		out = append(out, ReportCopy{Name: name, URL: url})
	}
	return out, nil
}

// Chat answers message, grounded in the stored result when resultID is set.
func (s *Service) Chat(ctx context.Context, message, resultID string) (string, error) {
	var cc *pipeline.ChatContext
	if resultID = strings.TrimSpace(resultID); resultID != "" {
		rec, err := s.Result(ctx, resultID)
		if err != nil {
			return "", err
		}
		cc = pipeline.NewChatContext(rec.Context, &rec.Report)
	}
	return s.chat.Respond(ctx, message, cc)
}

// Close cancels running analyses and waits for their bookkeeping.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
