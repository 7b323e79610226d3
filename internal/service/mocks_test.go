package service_test

import (
	"context"

	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/model"
	"basegraph.app/assist/internal/queue"
)

type mockDispatcher struct {
	dispatchFn func(ctx context.Context, req assistant.Request) (*assistant.Result, error)
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req assistant.Request) (*assistant.Result, error) {
	return m.dispatchFn(ctx, req)
}

type mockInvocationStore struct {
	created     []*model.Invocation
	createErr   error
	listFeature string
	listLimit   int32
	listResult  []model.Invocation
	listErr     error
	getByIDFn   func(ctx context.Context, id int64) (*model.Invocation, error)
}

func (m *mockInvocationStore) Create(_ context.Context, inv *model.Invocation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, inv)
	return nil
}

func (m *mockInvocationStore) GetByID(ctx context.Context, id int64) (*model.Invocation, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockInvocationStore) ListRecent(_ context.Context, feature string, limit int32) ([]model.Invocation, error) {
	m.listFeature = feature
	m.listLimit = limit
	return m.listResult, m.listErr
}

type mockProducer struct {
	published  []queue.InvocationEvent
	publishErr error
}

func (m *mockProducer) Publish(_ context.Context, event queue.InvocationEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, event)
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
