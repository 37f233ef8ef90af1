package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	jobs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	sent := Job{ID: "job-1", RequestedAt: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
	if err := q.Publish(ctx, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-jobs:
		if got.ID != sent.ID || !got.RequestedAt.Equal(sent.RequestedAt) {
			t.Fatalf("got %+v, want %+v", got, sent)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestInMemory_PublishHonorsCancellation(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	// Fill the buffer so the next publish blocks.
	if err := q.Publish(ctx, Job{ID: "fill"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()

	if err := q.Publish(ctx, Job{ID: "blocked"}); err == nil {
		t.Fatal("expected context error from blocked publish")
	}
}
