package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktrack/tasktrack-api/internal/api/metrics"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	removeTimeout  = 10 * time.Second
)

// Dispatcher removes stored files in the background. Paths are routed to a
// fixed set of workers by hashing, so removals of the same path never race.
type Dispatcher struct {
	workers []chan string
	files   ports.FileStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, files ports.FileStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		files:   files,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channel and stop
// once ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue schedules path for removal. It never blocks the caller: when the
// worker's buffer is full the path is dropped and logged.
func (d *Dispatcher) Enqueue(path string) {
	if path == "" {
		return
	}
	idx := d.shardIndex(path)
	select {
	case d.workers[idx] <- path:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.CleanupErrorsTotal.Inc()
		d.log.Warn().Str("path", path).Int("worker_id", idx).Msg("cleanup queue full, dropping file removal")
	}
}

// shardIndex maps a path deterministically to a worker index.
func (d *Dispatcher) shardIndex(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			// Finish what is already queued before exiting.
			for {
				select {
				case path := <-ch:
					depth.Dec()
					d.remove(id, path)
				default:
					return
				}
			}
		case path := <-ch:
			depth.Dec()
			d.remove(id, path)
		}
	}
}

func (d *Dispatcher) remove(id int, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()

	if err := d.files.Remove(ctx, path); err != nil {
		metrics.CleanupErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("path", path).
			Int("worker_id", id).
			Msg("file removal failed")
		return
	}
	d.log.Debug().Str("path", path).Int("worker_id", id).Msg("file removed")
}
