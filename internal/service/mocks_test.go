package service_test

import (
	"context"

	"ian.app/engine/common/llm"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/store"
)

type mockLLM struct {
	completeFn func(ctx context.Context, req llm.Request) (string, error)
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "", nil
}

func (m *mockLLM) CompleteJSON(context.Context, llm.Request, string, any, any) error { return nil }

func (m *mockLLM) Model() string { return "mock-model" }

type mockSettingsStore struct {
	getFn func(ctx context.Context, key string, out any) error
}

func (m *mockSettingsStore) Get(ctx context.Context, key string, out any) error {
	if m.getFn != nil {
		return m.getFn(ctx, key, out)
	}
	return store.ErrNotFound
}

func (m *mockSettingsStore) Put(context.Context, string, any) error { return nil }

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

type mockTrashStore struct {
	listTrashFn func(ctx context.Context) ([]store.TrashEntry, error)
	restoreFn   func(ctx context.Context, trashID string) error
	purgeFn     func(ctx context.Context, trashID string) error
}

func (m *mockTrashStore) ListTrash(ctx context.Context) ([]store.TrashEntry, error) {
	if m.listTrashFn != nil {
		return m.listTrashFn(ctx)
	}
	return nil, nil
}

func (m *mockTrashStore) Restore(ctx context.Context, trashID string) error {
	if m.restoreFn != nil {
		return m.restoreFn(ctx, trashID)
	}
	return nil
}

func (m *mockTrashStore) Purge(ctx context.Context, trashID string) error {
	if m.purgeFn != nil {
		return m.purgeFn(ctx, trashID)
	}
	return nil
}

type mockGradingJobStore struct {
	saveFn    func(ctx context.Context, job *model.GradingJob) error
	loadFn    func(ctx context.Context, id string) (*model.GradingJob, error)
	loadAllFn func(ctx context.Context) ([]model.GradingJob, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockGradingJobStore) Save(ctx context.Context, job *model.GradingJob) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, job)
	}
	return nil
}

func (m *mockGradingJobStore) Load(ctx context.Context, id string) (*model.GradingJob, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockGradingJobStore) LoadAll(ctx context.Context) ([]model.GradingJob, error) {
	if m.loadAllFn != nil {
		return m.loadAllFn(ctx)
	}
	return nil, nil
}

func (m *mockGradingJobStore) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, task queue.RunTask) error
	tasks     []queue.RunTask
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.RunTask) error {
	m.tasks = append(m.tasks, task)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }
