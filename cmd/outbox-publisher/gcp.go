package main

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

// gcpPublisher adapts *pubsub.Publisher to the publisher interface so tests
// can substitute fakes.
type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{inner: p}
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	res := p.inner.Publish(ctx, msg)
	if res == nil {
		return nil
	}
	return gcpResult{inner: res, pub: p.inner, orderingKey: msg.OrderingKey}
}

type gcpResult struct {
	inner       *gcppubsub.PublishResult
	pub         *gcppubsub.Publisher
	orderingKey string
}

// Get unpauses the ordering key after a failure; the client otherwise
// rejects every later message with that key.
func (r gcpResult) Get(ctx context.Context) (string, error) {
	if r.inner == nil {
		return "", errors.New("publish result is nil")
	}
	id, err := r.inner.Get(ctx)
	if err != nil && r.orderingKey != "" && r.pub != nil {
		r.pub.ResumePublish(r.orderingKey)
	}
	return id, err
}
