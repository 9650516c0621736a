package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/apperrors"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/cache"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/retry"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/services/workqueue"
)

// PipelineOrchestrator runs the full discovery pipeline for one request:
// metadata, profiling, classification, maturity, quality, artifacts.
type PipelineOrchestrator interface {
	// Discover runs the pipeline and returns the result. A repeat request
	// inside the cache freshness window is served from cache with its
	// completed events replayed. On a step failure the partial result is
	// returned alongside the error, with Error set on the result.
	Discover(ctx context.Context, req models.DiscoveryRequest) (*models.DiscoveryResult, error)
}

type pipelineOrchestrator struct {
	conn       datasource.Connector
	store      cache.Store
	strategist SamplingStrategist
	profiler   ColumnProfiler
	detector   KeyDetector
	inferencer RelationshipInferencer
	checker    QualityChecker
	cacheCfg   config.CacheConfig
	discovery  config.DiscoveryConfig
	sink       ProgressSink
	logger     *zap.Logger

	now func() time.Time
}

// NewPipelineOrchestrator wires the pipeline services around one connector.
// The store may be nil, which disables caching entirely.
func NewPipelineOrchestrator(conn datasource.Connector, store cache.Store, cfg *config.Config, sink ProgressSink, logger *zap.Logger) PipelineOrchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	retryCfg := retryConfigFrom(cfg.Retry)
	strategist := NewSamplingStrategist(cfg.Discovery)
	return &pipelineOrchestrator{
		conn:       conn,
		store:      store,
		strategist: strategist,
		profiler:   NewColumnProfiler(conn, strategist, cfg.Discovery, retryCfg, logger),
		detector:   NewKeyDetector(conn, cfg.Discovery, retryCfg, logger),
		inferencer: NewRelationshipInferencer(logger),
		checker:    NewQualityChecker(conn, cfg.Discovery, retryCfg, logger),
		cacheCfg:   cfg.Cache,
		discovery:  cfg.Discovery,
		sink:       sink,
		logger:     logger.Named("orchestrator"),
		now:        time.Now,
	}
}

// retryConfigFrom maps the loaded retry settings onto the backoff defaults.
func retryConfigFrom(cfg config.RetryConfig) *retry.Config {
	rc := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialDelayMs > 0 {
		rc.InitialDelay = time.Duration(cfg.InitialDelayMs) * time.Millisecond
	}
	if cfg.MaxDelayMs > 0 {
		rc.MaxDelay = time.Duration(cfg.MaxDelayMs) * time.Millisecond
	}
	return rc
}

func (o *pipelineOrchestrator) Discover(ctx context.Context, req models.DiscoveryRequest) (*models.DiscoveryResult, error) {
	if cached := o.tryReplay(ctx, req); cached != nil {
		return cached, nil
	}

	result := &models.DiscoveryResult{
		RunID:     req.RunID,
		Request:   req,
		StartedAt: o.now().UTC(),
	}

	o.logger.Info("starting discovery run",
		zap.String("run_id", req.RunID.String()),
		zap.String("database", req.Database),
		zap.String("schema", req.Schema))

	if err := o.runMetadata(ctx, req, result); err != nil {
		return o.fail(result, models.StepMetadata, err)
	}
	if err := o.runProfiling(ctx, result); err != nil {
		return o.fail(result, models.StepProfiling, err)
	}
	if err := o.runClassification(result); err != nil {
		return o.fail(result, models.StepClassification, err)
	}
	if err := o.runMaturity(ctx, result); err != nil {
		return o.fail(result, models.StepMaturity, err)
	}
	if err := o.runQuality(ctx, result); err != nil {
		return o.fail(result, models.StepQuality, err)
	}
	if err := o.runArtifacts(result); err != nil {
		return o.fail(result, models.StepArtifacts, err)
	}

	completedAt := o.now().UTC()
	result.CompletedAt = &completedAt
	o.persist(ctx, req, result)

	o.logger.Info("discovery run complete",
		zap.String("run_id", req.RunID.String()),
		zap.Int("tables", len(result.Tables)),
		zap.Int("relationships", len(result.Relationships)))
	return result, nil
}

func (o *pipelineOrchestrator) runMetadata(ctx context.Context, req models.DiscoveryRequest, result *models.DiscoveryResult) error {
	o.emitRunning(result, models.StepMetadata, "", 0, 0)

	metas, err := o.conn.ListTables(ctx, req.Database, req.Schema, req.IncludeViews)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })

	for _, meta := range metas {
		cols, err := o.conn.ListColumns(ctx, meta.Ref())
		if err != nil {
			return fmt.Errorf("list columns for %s: %w", meta.Ref().FQN(), err)
		}
		columns := make([]models.Column, len(cols))
		for i, c := range cols {
			columns[i] = models.Column{
				Name:            c.Name,
				DataType:        c.DataType,
				IsNullable:      c.IsNullable,
				OrdinalPosition: c.OrdinalPosition,
			}
		}
		result.Tables = append(result.Tables, models.NewTable(meta.Ref(), meta.Kind, meta.RowCount, meta.Comment, columns))
	}

	o.completeStep(result, models.StepMetadata, fmt.Sprintf("%d tables", len(result.Tables)))
	return nil
}

// profileTableTask profiles one table inside the work queue. Transient
// failures are retried inside the profiler, so the queue itself never
// retries these tasks.
type profileTableTask struct {
	workqueue.BaseTask
	profiler ColumnProfiler
	table    *models.Table
	collect  func(*models.TableProfile)
}

func (t *profileTableTask) Execute(ctx context.Context, _ workqueue.TaskEnqueuer) error {
	profile, err := t.profiler.ProfileTable(ctx, t.table)
	if err != nil {
		return err
	}
	t.collect(profile)
	return nil
}

func (o *pipelineOrchestrator) runProfiling(ctx context.Context, result *models.DiscoveryResult) error {
	total := len(result.Tables)
	o.emitRunning(result, models.StepProfiling, "", 0, total)

	var mu sync.Mutex
	profileByFQN := make(map[string]*models.TableProfile, total)
	done := 0

	queue := workqueue.New(o.logger,
		workqueue.WithStrategy(workqueue.NewSerializedStrategy()),
		workqueue.WithRetryConfig(workqueue.NoRetryConfig()),
	)

	for _, table := range result.Tables {
		table := table
		queue.Enqueue(&profileTableTask{
			BaseTask: workqueue.NewBaseTask(fmt.Sprintf("profile %s", table.Ref.FQN())),
			profiler: o.profiler,
			table:    table,
			collect: func(p *models.TableProfile) {
				mu.Lock()
				profileByFQN[p.Ref.FQN()] = p
				done++
				current := done
				mu.Unlock()
				o.emitRunning(result, models.StepProfiling,
					fmt.Sprintf("profiled %s", p.Ref.FQN()), current, total)
			},
		})
	}

	if err := queue.Wait(ctx); err != nil {
		return fmt.Errorf("profile tables: %w", err)
	}

	// Table order, not completion order, decides the result layout.
	for _, table := range result.Tables {
		if profile, ok := profileByFQN[table.Ref.FQN()]; ok {
			result.Profiles = append(result.Profiles, profile)
		}
	}

	o.completeStep(result, models.StepProfiling, fmt.Sprintf("%d tables profiled", len(result.Profiles)))
	return nil
}

func (o *pipelineOrchestrator) runClassification(result *models.DiscoveryResult) error {
	o.emitRunning(result, models.StepClassification, "", 0, 0)

	facts := 0
	for _, table := range result.Tables {
		table.Classification = ClassifyTable(table.Ref.ShortName(), table.ColumnNames())
		if table.Classification == models.ClassificationFact {
			facts++
		}
	}

	o.completeStep(result, models.StepClassification,
		fmt.Sprintf("%d fact, %d dimension", facts, len(result.Tables)-facts))
	return nil
}

// runMaturity covers the key/relationship stage: composite-key fallback for
// unkeyed tables, name-pattern relationship inference, then the grade.
func (o *pipelineOrchestrator) runMaturity(ctx context.Context, result *models.DiscoveryResult) error {
	o.emitRunning(result, models.StepMaturity, "", 0, 0)

	for _, profile := range result.Profiles {
		if err := o.detector.DetectCompositeKey(ctx, profile); err != nil {
			return fmt.Errorf("composite key detection for %s: %w", profile.Ref.FQN(), err)
		}
	}

	profileByFQN := make(map[string]*models.TableProfile, len(result.Profiles))
	for _, p := range result.Profiles {
		profileByFQN[p.Ref.FQN()] = p
	}
	result.Relationships = o.inferencer.Infer(result.Tables, profileByFQN)
	result.Maturity = AssessMaturity(result.Tables, result.Profiles, result.Relationships)

	o.completeStep(result, models.StepMaturity,
		fmt.Sprintf("%s, %d relationships", result.Maturity.Level, len(result.Relationships)))
	return nil
}

func (o *pipelineOrchestrator) runQuality(ctx context.Context, result *models.DiscoveryResult) error {
	o.emitRunning(result, models.StepQuality, "", 0, 0)

	checks := o.checker.Check(ctx, result.Tables, result.Profiles, result.Relationships)
	result.Quality = ScoreQuality(checks, o.discovery.Weights)

	o.completeStep(result, models.StepQuality,
		fmt.Sprintf("score %d", result.Quality.OverallScore))
	return nil
}

func (o *pipelineOrchestrator) runArtifacts(result *models.DiscoveryResult) error {
	o.emitRunning(result, models.StepArtifacts, "", 0, 0)

	model, err := BuildSemanticModel(result)
	if err != nil {
		return fmt.Errorf("build semantic model: %w", err)
	}
	result.SemanticModel = model
	result.Graph = BuildGraphRecords(result)

	o.completeStep(result, models.StepArtifacts,
		fmt.Sprintf("%d graph nodes", len(result.Graph.Nodes)))
	return nil
}

// tryReplay serves a repeat request from cache when the stored run is still
// inside the freshness window. The cached result is returned as-is apart
// from FromCache, and its completed events are replayed in order.
func (o *pipelineOrchestrator) tryReplay(ctx context.Context, req models.DiscoveryRequest) *models.DiscoveryResult {
	if o.store == nil {
		return nil
	}

	raw, err := o.store.Get(ctx, req.CacheKey())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			o.logger.Warn("cache read failed, running fresh", zap.String("error", err.Error()))
		}
		return nil
	}

	var entry models.PipelineCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Result == nil {
		o.logger.Warn("dropping undecodable cache entry", zap.String("key", req.CacheKey()))
		_ = o.store.Delete(ctx, req.CacheKey())
		return nil
	}

	age := o.now().Sub(entry.CreatedAt)
	if age > o.cacheCfg.FreshnessWindow() {
		return nil
	}

	result := entry.Result
	result.FromCache = true
	for i, step := range result.CompletedSteps {
		o.sink.Emit(models.ProgressEvent{
			Step:       step,
			Label:      stepLabels[step],
			Status:     models.StepStatusCompleted,
			OverallPct: overallPct(i+1, 0),
		})
	}

	o.logger.Info("serving discovery result from cache",
		zap.String("key", req.CacheKey()),
		zap.Duration("age", age))
	return result
}

func (o *pipelineOrchestrator) persist(ctx context.Context, req models.DiscoveryRequest, result *models.DiscoveryResult) {
	if o.store == nil {
		return
	}

	entry := models.PipelineCacheEntry{Result: result, CreatedAt: o.now().UTC()}
	raw, err := json.Marshal(entry)
	if err != nil {
		o.logger.Warn("cache entry marshal failed", zap.String("error", err.Error()))
		return
	}
	if err := o.store.Set(ctx, req.CacheKey(), raw, o.cacheCfg.AbsoluteTTL()); err != nil {
		o.logger.Warn("cache write failed", zap.String("error", err.Error()))
	}
}

// fail records the failing step on the result and returns the partial
// result with the error. Exactly one error event is emitted.
func (o *pipelineOrchestrator) fail(result *models.DiscoveryResult, step models.Step, err error) (*models.DiscoveryResult, error) {
	completedAt := o.now().UTC()
	result.CompletedAt = &completedAt
	result.Error = err.Error()

	o.sink.Emit(models.ProgressEvent{
		Step:       step,
		Label:      stepLabels[step],
		Status:     models.StepStatusError,
		Detail:     err.Error(),
		OverallPct: overallPct(len(result.CompletedSteps), 0),
	})

	o.logger.Error("discovery step failed",
		zap.String("run_id", result.RunID.String()),
		zap.String("step", string(step)),
		zap.Error(err))
	return result, err
}

func (o *pipelineOrchestrator) emitRunning(result *models.DiscoveryResult, step models.Step, detail string, current, total int) {
	var fraction float64
	if total > 0 {
		fraction = float64(current) / float64(total)
	}
	o.sink.Emit(models.ProgressEvent{
		Step:       step,
		Label:      stepLabels[step],
		Status:     models.StepStatusRunning,
		Detail:     detail,
		Current:    current,
		Total:      total,
		OverallPct: overallPct(len(result.CompletedSteps), fraction),
	})
}

func (o *pipelineOrchestrator) completeStep(result *models.DiscoveryResult, step models.Step, detail string) {
	result.CompletedSteps = append(result.CompletedSteps, step)
	o.sink.Emit(models.ProgressEvent{
		Step:       step,
		Label:      stepLabels[step],
		Status:     models.StepStatusCompleted,
		Detail:     detail,
		OverallPct: overallPct(len(result.CompletedSteps), 0),
	})
}
