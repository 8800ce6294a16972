// Package queue serializes render jobs so one ComfyUI backend processes a
// single workflow at a time.
package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"violet/logger"
)

// Job is one queued render: a label for status reporting and the work.
type Job struct {
	Name string
	Run  func()
}

// Queue is a bounded FIFO with a background processing loop.
type Queue struct {
	elements        []Job
	limit           int
	mutex           sync.Mutex
	processing      bool
	processingMutex sync.Mutex
	processingJob   *Job
}

// New returns a queue holding at most limit pending jobs. A zero or
// negative limit means unbounded.
func New(limit int) *Queue {
	return &Queue{limit: limit}
}

// Enqueue adds a job to the end of the queue and returns a position
// message when others are ahead.
func (q *Queue) Enqueue(job Job) (string, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.limit > 0 && len(q.elements) >= q.limit {
		return "", fmt.Errorf("the queue is currently full (limit is %d), please try again in a few minutes", q.limit)
	}

	q.elements = append(q.elements, job)

	jobsAhead := len(q.elements) - 1
	if q.isProcessing() {
		jobsAhead++
	}
	if jobsAhead == 0 {
		return "", nil
	}
	if jobsAhead == 1 {
		return "There is 1 render in the queue ahead of you.", nil
	}
	return fmt.Sprintf("There are %d renders in the queue ahead of you.", jobsAhead), nil
}

// EnqueueFront puts a job at the head of the queue.
func (q *Queue) EnqueueFront(job Job) (string, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.limit > 0 && len(q.elements) >= q.limit {
		return "", errors.New("the queue is currently full")
	}

	busy := q.isProcessing() || len(q.elements) > 0
	q.elements = append([]Job{job}, q.elements...)
	if !busy {
		return "", nil
	}
	return "Your render was placed at the front of the queue.", nil
}

// Dequeue removes and returns the first job, or nil when empty.
func (q *Queue) Dequeue() *Job {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.elements) == 0 {
		return nil
	}
	job := q.elements[0]
	q.elements = q.elements[1:]
	return &job
}

// IsEmpty checks if the queue is empty.
func (q *Queue) IsEmpty() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.elements) == 0
}

// Len returns the current number of pending jobs.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.elements)
}

// Peek returns the first job without removing it.
func (q *Queue) Peek() *Job {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.elements) == 0 {
		return nil
	}
	return &q.elements[0]
}

// NameList returns the labels of all pending jobs in order.
func (q *Queue) NameList() []string {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	var names []string
	for _, job := range q.elements {
		names = append(names, job.Name)
	}
	return names
}

// Clear removes all pending jobs.
func (q *Queue) Clear() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.elements = nil
	logger.Info("Queue cleared")
}

// IsCurrentlyProcessing returns whether a job is actively running.
func (q *Queue) IsCurrentlyProcessing() bool {
	return q.isProcessing()
}

// ProcessingName returns the label of the running job, or "".
func (q *Queue) ProcessingName() string {
	q.processingMutex.Lock()
	defer q.processingMutex.Unlock()
	if q.processingJob != nil {
		return q.processingJob.Name
	}
	return ""
}

func (q *Queue) setProcessing(value bool) {
	q.processingMutex.Lock()
	defer q.processingMutex.Unlock()
	q.processing = value
}

func (q *Queue) isProcessing() bool {
	q.processingMutex.Lock()
	defer q.processingMutex.Unlock()
	return q.processing
}

func (q *Queue) setProcessingJob(job *Job) {
	q.processingMutex.Lock()
	defer q.processingMutex.Unlock()
	q.processingJob = job
}

// ProcessQueue continuously runs queued jobs one at a time. Run it in its
// own goroutine.
func (q *Queue) ProcessQueue() {
	for {
		if !q.isProcessing() && !q.IsEmpty() {
			logger.Debug("Queue: starting next render", "queue_length", q.Len())
			q.setProcessing(true)

			job := q.Dequeue()
			q.setProcessingJob(job)

			if job != nil && job.Run != nil {
				go func() {
					logger.Debug("Queue: running render", "name", job.Name)
					job.Run()
					q.setProcessing(false)
					q.setProcessingJob(nil)
					logger.Debug("Queue: render completed", "name", job.Name, "queue_length", q.Len())
				}()
			} else {
				q.setProcessing(false)
				q.setProcessingJob(nil)
			}
		}

		time.Sleep(100 * time.Millisecond)
	}
}
