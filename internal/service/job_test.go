package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ian.app/engine/common/id"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/service"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/template"
	"ian.app/engine/internal/version"
)

var _ = Describe("JobService", func() {
	var (
		ctx      context.Context
		jobs     *mockJobStore
		trash    *mockTrashStore
		producer *mockProducer
		svc      service.JobService
	)

	BeforeEach(func() {
		ctx = context.Background()
		jobs = &mockJobStore{}
		trash = &mockTrashStore{}
		producer = &mockProducer{}

		Expect(id.Init(1)).To(Succeed())

		versions := version.NewService(&mockLLM{}, template.NewRegistry(nil), &mockSettingsStore{})
		svc = service.NewJobService(jobs, trash, versions, producer)
	})

	Describe("Create", func() {
		It("creates a new job with version 1 and an id", func() {
			var saved *model.Job
			jobs.saveFn = func(_ context.Context, job *model.Job) error {
				saved = job
				return nil
			}

			job, err := svc.Create(ctx, service.CreateJobInput{
				Title:       "  Checkout revamp  ",
				Description: "Rework checkout",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(job.ID).NotTo(BeEmpty())
			Expect(job.Title).To(Equal("Checkout revamp"))
			Expect(job.Version).To(Equal(1))
			Expect(job.Status).To(Equal(model.JobStatusNew))
			Expect(job.Outputs).To(BeEmpty())
			Expect(saved).To(Equal(job))
		})

		It("rejects an empty title", func() {
			_, err := svc.Create(ctx, service.CreateJobInput{Title: "   "})
			Expect(err).To(MatchError(service.ErrTitleRequired))
		})
	})

	Describe("Run", func() {
		It("enqueues a pipeline run task", func() {
			jobs.loadFn = func(_ context.Context, jobID string) (*model.Job, error) {
				return &model.Job{ID: jobID, Status: model.JobStatusNew, Version: 1}, nil
			}

			_, err := svc.Run(ctx, "job-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(producer.tasks).To(HaveLen(1))
			Expect(producer.tasks[0].TaskType).To(Equal(queue.TaskTypePipelineRun))
			Expect(producer.tasks[0].JobID).To(Equal("job-1"))
		})

		It("refuses to run a job that is already running", func() {
			jobs.loadFn = func(_ context.Context, jobID string) (*model.Job, error) {
				return &model.Job{ID: jobID, Status: model.JobStatusRunning}, nil
			}

			_, err := svc.Run(ctx, "job-1")

			Expect(err).To(MatchError(service.ErrJobRunning))
			Expect(producer.tasks).To(BeEmpty())
		})

		It("propagates a missing job", func() {
			_, err := svc.Run(ctx, "nope")
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("CreateVersion", func() {
		It("bumps the version and persists the job", func() {
			jobs.loadFn = func(_ context.Context, jobID string) (*model.Job, error) {
				return &model.Job{
					ID:      jobID,
					Status:  model.JobStatusCompleted,
					Version: 1,
					Outputs: map[string]string{"01_tech_lead.md": "v1"},
				}, nil
			}
			var saved *model.Job
			jobs.saveFn = func(_ context.Context, job *model.Job) error {
				saved = job
				return nil
			}

			job, err := svc.CreateVersion(ctx, "job-1", service.NewVersionInput{ChangeReason: "add refunds"})

			Expect(err).NotTo(HaveOccurred())
			Expect(job.Version).To(Equal(2))
			Expect(job.VersionHistory).To(HaveLen(1))
			Expect(job.Status).To(Equal(model.JobStatusNew))
			Expect(saved).To(Equal(job))
		})

		It("refuses while a run is in progress", func() {
			jobs.loadFn = func(_ context.Context, jobID string) (*model.Job, error) {
				return &model.Job{ID: jobID, Status: model.JobStatusRunning}, nil
			}

			_, err := svc.CreateVersion(ctx, "job-1", service.NewVersionInput{ChangeReason: "x"})
			Expect(err).To(MatchError(service.ErrJobRunning))
		})
	})

	Describe("ChangelogSummary", func() {
		It("extracts the one-line summary from the stored changelog", func() {
			jobs.loadFn = func(_ context.Context, jobID string) (*model.Job, error) {
				return &model.Job{
					ID:        jobID,
					Changelog: "## Version 2 - Refund support\n\ndetails",
				}, nil
			}

			summary, err := svc.ChangelogSummary(ctx, "job-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal("Refund support"))
		})
	})

	Describe("trash operations", func() {
		It("delegates soft delete to the store", func() {
			deleted := ""
			jobs.softDeleteFn = func(_ context.Context, jobID string) error {
				deleted = jobID
				return nil
			}

			Expect(svc.Delete(ctx, "job-1")).To(Succeed())
			Expect(deleted).To(Equal("job-1"))
		})

		It("lists, restores and purges through the trash store", func() {
			trash.listTrashFn = func(_ context.Context) ([]store.TrashEntry, error) {
				return []store.TrashEntry{{ID: "job-1_100", JobID: "job-1"}}, nil
			}

			entries, err := svc.ListTrash(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))

			restored := ""
			trash.restoreFn = func(_ context.Context, trashID string) error {
				restored = trashID
				return nil
			}
			Expect(svc.Restore(ctx, "job-1_100")).To(Succeed())
			Expect(restored).To(Equal("job-1_100"))

			purged := ""
			trash.purgeFn = func(_ context.Context, trashID string) error {
				purged = trashID
				return nil
			}
			Expect(svc.Purge(ctx, "job-1_100")).To(Succeed())
			Expect(purged).To(Equal("job-1_100"))
		})
	})
})

var _ = Describe("GradingService", func() {
	var (
		ctx         context.Context
		gradingJobs *mockGradingJobStore
		producer    *mockProducer
		svc         service.GradingService
	)

	BeforeEach(func() {
		ctx = context.Background()
		gradingJobs = &mockGradingJobStore{}
		producer = &mockProducer{}

		Expect(id.Init(1)).To(Succeed())
		svc = service.NewGradingService(gradingJobs, producer)
	})

	Describe("Create", func() {
		It("assigns ids to requirements that lack them", func() {
			job, err := svc.Create(ctx, service.CreateGradingJobInput{
				Title: "Intake",
				Requirements: []model.Requirement{
					{Name: "Login", Content: "Users can log in"},
					{ID: "custom", Name: "Search", Content: "Users can search"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(job.Requirements[0].ID).To(Equal("req-1"))
			Expect(job.Requirements[1].ID).To(Equal("custom"))
		})

		It("rejects an empty requirement list", func() {
			_, err := svc.Create(ctx, service.CreateGradingJobInput{Title: "Intake"})
			Expect(err).To(MatchError(service.ErrNoRequirements))
		})
	})

	Describe("Run", func() {
		It("enqueues a grading run task", func() {
			gradingJobs.loadFn = func(_ context.Context, jobID string) (*model.GradingJob, error) {
				return &model.GradingJob{ID: jobID, Status: model.JobStatusNew}, nil
			}

			_, err := svc.Run(ctx, "g-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(producer.tasks).To(HaveLen(1))
			Expect(producer.tasks[0].TaskType).To(Equal(queue.TaskTypeGradingRun))
		})
	})
})
