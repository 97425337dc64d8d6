package documents

import (
	"context"
	"sync"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/sirupsen/logrus"
)

const moduleName = "Documents"

// Dispatcher renders, archives and sends invoice documents on a bounded worker pool.
// Enqueue never blocks; a full queue drops the job with a warning.
type Dispatcher struct {
	Renderer Renderer
	Archiver Archiver // optional
	Notifier Notifier
	Logger   *logrus.Logger
	Workers  int
	Timeout  time.Duration

	queue chan InvoiceSnapshot
	wg    sync.WaitGroup
	once  sync.Once
	mu    sync.RWMutex
	done  bool
}

func NewDispatcher(renderer Renderer, archiver Archiver, notifier Notifier, logger *logrus.Logger, workers int, queueSize int) *Dispatcher {
	return &Dispatcher{
		Renderer: renderer,
		Archiver: archiver,
		Notifier: notifier,
		Logger:   logger,
		Workers:  max(workers, 1),
		Timeout:  30 * time.Second,
		queue:    make(chan InvoiceSnapshot, max(queueSize, 1)),
	}
}

// NewDispatcherFromEnv picks GCS and Pub/Sub when their settings are present.
func NewDispatcherFromEnv(logger *logrus.Logger) *Dispatcher {
	var archiver Archiver
	if bucket := config.DocumentBucket(); bucket != "" {
		archiver = GCSArchiver{Bucket: bucket}
	}
	var notifier Notifier = LogNotifier{Logger: logger}
	if topic := config.NotificationTopic(); topic != "" {
		notifier = PubSubNotifier{Topic: topic}
	}
	return NewDispatcher(XLSXRenderer{}, archiver, notifier, logger, config.DocumentWorkers(), config.DocumentQueueSize())
}

// Start launches the workers. They exit once Stop drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		for i := 0; i < d.Workers; i++ {
			d.wg.Add(1)
			go d.work(ctx)
		}
	})
}

// Enqueue reports whether the snapshot was accepted.
func (d *Dispatcher) Enqueue(s InvoiceSnapshot) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.done {
		return false
	}
	select {
	case d.queue <- s:
		return true
	default:
		config.LogWarn(d.Logger, moduleName, "Enqueue", "document queue full; dropping", s.InvoiceNumber, nil)
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.done {
		d.done = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for s := range d.queue {
		d.process(ctx, s)
	}
}

func (d *Dispatcher) process(ctx context.Context, s InvoiceSnapshot) {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.Timeout)
	defer cancel()

	data, err := d.Renderer.Render(s)
	if err != nil {
		config.LogWarn(d.Logger, moduleName, "process", "render failed", s.InvoiceNumber, err)
		return
	}
	attachment := Attachment{FileName: s.FileName(), ContentType: d.Renderer.ContentType()}
	if d.Archiver != nil {
		uri, err := d.Archiver.Archive(jobCtx, s, data, attachment.ContentType)
		if err != nil {
			config.LogWarn(d.Logger, moduleName, "process", "archive failed; sending inline", s.InvoiceNumber, err)
			attachment.Data = data
		} else {
			attachment.URI = uri
		}
	} else {
		attachment.Data = data
	}

	if s.CustomerEmail == "" {
		return
	}
	if err := d.Notifier.Send(jobCtx, s.CustomerEmail, s.Summary(), s, attachment); err != nil {
		config.LogWarn(d.Logger, moduleName, "process", "notification failed", s.InvoiceNumber, err)
	}
}
