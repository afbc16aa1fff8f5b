package service

import (
	"context"
	"log"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

type SnapshotStorageInterface interface {
	Save(snapshot model.StateSnapshot) error
	SaveScore(score model.Score)
}

// SnapshotPublisher decouples snapshot emission from the decision cadence:
// Publish never blocks, and a snapshot that arrives while the previous one
// is still being written simply replaces it. Only the latest state matters.
type SnapshotPublisher struct {
	Repository SnapshotStorageInterface

	channel chan model.StateSnapshot
}

func NewSnapshotPublisher(repository SnapshotStorageInterface) *SnapshotPublisher {
	return &SnapshotPublisher{
		Repository: repository,
		channel:    make(chan model.StateSnapshot, 1),
	}
}

// Publish hands the snapshot to the writer goroutine without blocking. If
// the buffer is occupied the stale snapshot is dropped in favour of the new
// one.
func (p *SnapshotPublisher) Publish(snapshot model.StateSnapshot) {
	for {
		select {
		case p.channel <- snapshot:
			return
		default:
		}

		select {
		case <-p.channel:
		default:
		}
	}
}

func (p *SnapshotPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-p.channel:
			if err := p.Repository.Save(snapshot); err != nil {
				log.Printf("Snapshot save error: %s", err.Error())
			}

			for _, score := range snapshot.RecentScores {
				p.Repository.SaveScore(score)
			}
		}
	}
}
