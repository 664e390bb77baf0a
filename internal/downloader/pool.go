package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wvdl/internal/queue"
	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

// PostProcessor handles a single post
type PostProcessor interface {
	Process(ctx context.Context, post weverse.Post, password *string) (Outcome, error)
}

// PasswordSource asks the user for the password of a locked post
type PasswordSource interface {
	AskPassword(post weverse.Post) (string, error)
}

// Task is a post waiting for a worker, with the password to unlock it
// once the user has given one.
type Task struct {
	Post     weverse.Post
	Password *string
}

// Result is the result of one attempt at a post
type Result struct {
	Post     weverse.Post
	Outcome  Outcome
	Error    error
	Requeued bool
	Duration time.Duration
	WorkerID int
}

// PasswordWorkerID is the WorkerID of results produced by the password
// prompter rather than a worker.
const PasswordWorkerID = -1

// WorkerPool runs posts through a fixed number of workers. Locked posts are
// handed to a single prompting goroutine so that a pending prompt never
// holds a worker; once answered they go back to the front of the queue.
type WorkerPool struct {
	numWorkers  int
	queue       *queue.Queue[Task]
	locked      *queue.Queue[weverse.Post]
	resultQueue chan Result
	pending     sync.WaitGroup
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	processor   PostProcessor
	passwords   PasswordSource
	logger      logger.Logger
}

// NewWorkerPool creates a new worker pool. passwords may be nil, in which
// case locked posts fail with ErrorTypeAuthRequired.
func NewWorkerPool(numWorkers int, processor PostProcessor, passwords PasswordSource, log logger.Logger) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		queue:       queue.New[Task](),
		locked:      queue.New[weverse.Post](),
		resultQueue: make(chan Result, numWorkers),
		processor:   processor,
		passwords:   passwords,
		logger:      log,
	}
}

// Start starts all workers and the password prompter. Cancelling ctx stops
// them after their current post.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.ctx, wp.cancel = context.WithCancel(ctx)

	wp.logger.DebugWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.wg.Add(1)
	go wp.prompter()
}

// Submit adds a post to the back of the queue
func (wp *WorkerPool) Submit(post weverse.Post) error {
	wp.pending.Add(1)
	if !wp.queue.PushBack(Task{Post: post}) {
		wp.pending.Done()
		return fmt.Errorf("worker pool is shutting down")
	}
	return nil
}

// Wait blocks until every submitted post, including requeued ones and ones
// waiting for a password, has reached a terminal result, or until ctx is
// done.
func (wp *WorkerPool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		wp.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the workers down and closes the result channel. Posts still
// queued are dropped.
func (wp *WorkerPool) Stop() {
	wp.queue.Close()
	wp.locked.Close()
	wp.cancel()
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.logger.Debug("worker pool stopped")
}

// Results returns the result channel. It must be drained while the pool
// is running.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// GetQueueSize returns the number of posts waiting for a worker
func (wp *WorkerPool) GetQueueSize() int {
	return wp.queue.Len()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		task, err := wp.queue.Pop(wp.ctx)
		if err != nil {
			wp.logger.DebugWithFields("worker stopping", map[string]interface{}{
				"worker_id": id,
				"reason":    err.Error(),
			})
			return
		}

		result := wp.processJob(task, id)
		if result.Error == nil && result.Outcome.Status == StatusNeedsPassword {
			// the pending count moves to the prompter with the post
			wp.lock(task.Post)
			continue
		}
		// a wrong password is asked for again before any other locked post
		if result.Requeued && !wp.locked.PushFront(task.Post) {
			result.Requeued = false
		}

		wp.emit(result)
		if !result.Requeued {
			wp.pending.Done()
		}
	}
}

// lock hands a post to the prompter, finishing it if the pool is closing
func (wp *WorkerPool) lock(post weverse.Post) {
	if !wp.locked.PushBack(post) {
		wp.pending.Done()
	}
}

func (wp *WorkerPool) emit(result Result) {
	select {
	case wp.resultQueue <- result:
	case <-wp.ctx.Done():
	}
}

func (wp *WorkerPool) processJob(task Task, workerID int) Result {
	start := time.Now()
	outcome, err := wp.processor.Process(wp.ctx, task.Post, task.Password)
	result := Result{
		Post:     task.Post,
		Outcome:  outcome,
		Error:    err,
		Duration: time.Since(start),
		WorkerID: workerID,
	}

	if err != nil {
		result.Requeued = task.Post.Locked && errs.IsType(err, errs.ErrorTypeAuthRequired)
		wp.logger.DebugWithFields("worker failed to process post", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   task.Post.ID,
			"error":     err.Error(),
			"requeued":  result.Requeued,
			"duration":  result.Duration,
		})
		return result
	}

	wp.logger.DebugWithFields("worker completed post", map[string]interface{}{
		"worker_id": workerID,
		"post_id":   task.Post.ID,
		"status":    outcome.Status.String(),
		"duration":  result.Duration,
	})
	return result
}

// prompter owns every password prompt. Answered posts go to the front of
// the queue; declined ones are reported as skipped.
func (wp *WorkerPool) prompter() {
	defer wp.wg.Done()

	for {
		post, err := wp.locked.Pop(wp.ctx)
		if err != nil {
			return
		}

		wp.logger.DebugWithFields("asking for post password", map[string]interface{}{
			"post_id": post.ID,
			"queued":  wp.GetQueueSize(),
			"waiting": wp.locked.Len(),
		})

		start := time.Now()
		password, err := wp.ask(post)
		result := Result{Post: post, Duration: time.Since(start), WorkerID: PasswordWorkerID}
		switch {
		case err == nil:
			if wp.queue.PushFront(Task{Post: post, Password: &password}) {
				continue
			}
			result.Error = fmt.Errorf("worker pool is shutting down")
		case errors.Is(err, ErrPasswordDeclined):
			result.Outcome = Outcome{Status: StatusSkipped, Post: post}
		case wp.ctx.Err() != nil:
			wp.pending.Done()
			return
		default:
			result.Error = err
		}

		wp.emit(result)
		wp.pending.Done()
	}
}

// ask runs the prompt on its own goroutine so that cancellation does not
// wait for the user.
func (wp *WorkerPool) ask(post weverse.Post) (string, error) {
	if wp.passwords == nil {
		return "", errs.New(errs.ErrorTypeAuthRequired, fmt.Sprintf("post %d", post.ID), "post is locked")
	}

	type answer struct {
		password string
		err      error
	}
	answers := make(chan answer, 1)
	go func() {
		password, err := wp.passwords.AskPassword(post)
		answers <- answer{password, err}
	}()

	select {
	case a := <-answers:
		return a.password, a.err
	case <-wp.ctx.Done():
		return "", wp.ctx.Err()
	}
}
