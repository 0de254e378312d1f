// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"accreditation-gateway/internal/common/config"
	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one activated job and completes it.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

type WorkerOptions struct {
	TaskType       string
	Name           string
	MaxJobsActive  int
	Timeout        time.Duration
	RequestTimeout time.Duration
}

func NewWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, log logger.Logger) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": opts.TaskType})

	builder := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			if err := handler.Handle(client, job); err != nil {
				log.Error("handler returned error", map[string]interface{}{
					"error":  err.Error(),
					"jobKey": job.Key,
				})
			}
		}).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Name != "" {
		builder = builder.Name(opts.Name)
	}
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}
	if opts.RequestTimeout > 0 {
		builder = builder.RequestTimeout(opts.RequestTimeout)
	}

	return &CamundaWorker{
		worker:   builder.Open(),
		logger:   log,
		taskType: opts.TaskType,
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight handlers. The shared
// client is left open.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// Catalog is the slice of actions.Catalog needed to open workers.
type Catalog interface {
	Runners() []gateway.Runner
}

// StartActionWorkers opens one job worker per action, subscribed to the
// action's task type.
func StartActionWorkers(client zbc.Client, catalog Catalog, cfg *config.Config, log logger.Logger) []*CamundaWorker {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var workers []*CamundaWorker
	for _, runner := range catalog.Runners() {
		handler := NewActionHandler(runner, cfg.Camunda.ResultVariable, log)
		opts := workerOptions(runner, cfg)
		w := NewWorker(client, opts, handler, log)

		log.Info("worker started", map[string]interface{}{
			"action":        runner.Name(),
			"taskType":      opts.TaskType,
			"maxJobsActive": opts.MaxJobsActive,
		})
		workers = append(workers, w)
	}
	return workers
}

// workerOptions takes job concurrency from the action itself, falling back
// to the Camunda-wide setting when the action leaves it unset.
func workerOptions(runner gateway.Runner, cfg *config.Config) WorkerOptions {
	maxJobs := runner.MaxJobsActive()
	if maxJobs <= 0 {
		maxJobs = cfg.Camunda.MaxJobsActive
	}
	return WorkerOptions{
		TaskType:       runner.TaskType(),
		Name:           fmt.Sprintf("%s-%s", cfg.App.Name, runner.Name()),
		MaxJobsActive:  maxJobs,
		Timeout:        config.GetDuration(cfg.Camunda.Timeout),
		RequestTimeout: config.GetDuration(cfg.Camunda.RequestTimeout),
	}
}

// ActionHandler runs an action on the job variables and completes the job
// with the resulting envelope. Failures travel inside the envelope, so jobs
// are never failed or retried.
type ActionHandler struct {
	runner         gateway.Runner
	resultVariable string
	retry          *RetryConfig
	logger         logger.Logger
}

func NewActionHandler(runner gateway.Runner, resultVariable string, log logger.Logger) *ActionHandler {
	if resultVariable == "" {
		resultVariable = "actionResult"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ActionHandler{
		runner:         runner,
		resultVariable: resultVariable,
		retry:          DefaultRetryConfig,
		logger:         log.WithFields(map[string]interface{}{"action": runner.Name()}),
	}
}

func (h *ActionHandler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := jobContext(job)
	defer cancel()

	variables := h.Process(ctx, job)

	return withRetry(context.Background(), h.retry, "complete job", func(ctx context.Context) error {
		cmd, err := client.NewCompleteJobCommand().
			JobKey(job.Key).
			VariablesFromMap(variables)
		if err != nil {
			return err
		}
		_, err = cmd.Send(ctx)
		return err
	})
}

// Process runs the action and returns the variables the job completes with.
func (h *ActionHandler) Process(ctx context.Context, job entities.Job) map[string]interface{} {
	var env gateway.Envelope

	input, err := job.GetVariablesAsMap()
	if err != nil {
		stdErr := apperrors.NewInputParsingError(err)
		env = gateway.FailureEnvelope(stdErr)
		env.Error = fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
		h.logger.Warn("job variables unreadable", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	} else {
		env = h.runner.Run(ctx, input)
	}

	return map[string]interface{}{h.resultVariable: env.ToMap()}
}

// jobContext expires when the broker would reassign the job.
func jobContext(job entities.Job) (context.Context, context.CancelFunc) {
	if job.ActivatedJob != nil && job.Deadline > 0 {
		return context.WithDeadline(context.Background(), time.UnixMilli(job.Deadline))
	}
	return context.WithCancel(context.Background())
}
