package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/models"
	evictionRepo "github.com/KirkDiggler/sketchroom/internal/repositories/eviction"
	roomRepo "github.com/KirkDiggler/sketchroom/internal/repositories/room"
)

const directoryQueueSize = 256

type directoryJob struct {
	name string
	run  func(ctx context.Context) error
}

// directory applies room directory and eviction ledger writes in order on a
// single goroutine, so rooms never block on Redis while holding their lock.
// Writes are best effort: a full queue drops the write with a warning.
type directory struct {
	log       *slog.Logger
	rooms     roomRepo.Repository
	evictions evictionRepo.Repository
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	jobs   chan directoryJob
	done   chan struct{}
}

func newDirectory(log *slog.Logger, rooms roomRepo.Repository, evictions evictionRepo.Repository, timeout time.Duration) *directory {
	d := &directory{
		log:       log,
		rooms:     rooms,
		evictions: evictions,
		timeout:   timeout,
		jobs:      make(chan directoryJob, directoryQueueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *directory) run() {
	defer close(d.done)
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := job.run(ctx); err != nil {
			d.log.Warn("Directory write failed", "job", job.name, "error", err)
		}
		cancel()
	}
}

func (d *directory) enqueue(name string, run func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.jobs <- directoryJob{name: name, run: run}:
	default:
		d.log.Warn("Directory queue full, dropping write", "job", name)
	}
}

func (d *directory) saveRoom(summary *models.RoomSummary) {
	d.enqueue("save_room", func(ctx context.Context) error {
		return d.rooms.SaveRoom(ctx, &roomRepo.SaveRoomInput{Room: summary})
	})
}

func (d *directory) deleteRoom(roomID string) {
	d.enqueue("delete_room", func(ctx context.Context) error {
		return d.rooms.DeleteRoom(ctx, &roomRepo.DeleteRoomInput{RoomID: roomID})
	})
}

func (d *directory) recordEviction(record *models.EvictionRecord) {
	d.enqueue("record_eviction", func(ctx context.Context) error {
		return d.evictions.AddEvictionRecord(ctx, &evictionRepo.AddEvictionRecordInput{Record: record})
	})
}

// close stops accepting writes and waits for queued ones until ctx ends
func (d *directory) close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
