package pipeline_test

import (
	"context"

	"ian.app/engine/common/llm"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/store"
)

type mockLLM struct {
	completeFn     func(ctx context.Context, req llm.Request) (string, error)
	completeJSONFn func(ctx context.Context, req llm.Request, schemaName string, schema any, result any) error
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "", nil
}

func (m *mockLLM) CompleteJSON(ctx context.Context, req llm.Request, schemaName string, schema any, result any) error {
	if m.completeJSONFn != nil {
		return m.completeJSONFn(ctx, req, schemaName, schema, result)
	}
	return nil
}

func (m *mockLLM) Model() string { return "mock-model" }

type mockJobStore struct {
	saveFn       func(ctx context.Context, job *model.Job) error
	loadFn       func(ctx context.Context, id string) (*model.Job, error)
	loadAllFn    func(ctx context.Context) ([]model.Job, error)
	softDeleteFn func(ctx context.Context, id string) error
}

func (m *mockJobStore) Save(ctx context.Context, job *model.Job) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, job)
	}
	return nil
}

func (m *mockJobStore) Load(ctx context.Context, id string) (*model.Job, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockJobStore) LoadAll(ctx context.Context) ([]model.Job, error) {
	if m.loadAllFn != nil {
		return m.loadAllFn(ctx)
	}
	return nil, nil
}

func (m *mockJobStore) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

type mockSettingsStore struct {
	getFn func(ctx context.Context, key string, out any) error
	putFn func(ctx context.Context, key string, value any) error
}

func (m *mockSettingsStore) Get(ctx context.Context, key string, out any) error {
	if m.getFn != nil {
		return m.getFn(ctx, key, out)
	}
	return store.ErrNotFound
}

func (m *mockSettingsStore) Put(ctx context.Context, key string, value any) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, value)
	}
	return nil
}
