package service

import (
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/version"
)

// Services wires all service implementations over the shared stores.
type Services struct {
	jobs    JobService
	grading GradingService
}

type Deps struct {
	Jobs        store.JobStore
	Trash       store.TrashStore
	GradingJobs store.GradingJobStore
	Versions    *version.Service
	Producer    queue.Producer
}

func NewServices(deps Deps) *Services {
	return &Services{
		jobs:    NewJobService(deps.Jobs, deps.Trash, deps.Versions, deps.Producer),
		grading: NewGradingService(deps.GradingJobs, deps.Producer),
	}
}

func (s *Services) Jobs() JobService        { return s.jobs }
func (s *Services) Grading() GradingService { return s.grading }
