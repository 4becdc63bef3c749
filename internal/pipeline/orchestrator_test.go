package pipeline_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ian.app/engine/common/llm"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/pipeline"
	"ian.app/engine/internal/template"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx      context.Context
		client   *mockLLM
		jobs     *mockJobStore
		settings *mockSettingsStore
		job      *model.Job
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		jobs = &mockJobStore{}
		settings = &mockSettingsStore{}
		job = &model.Job{
			ID:      "job-1",
			Title:   "Payments rework",
			Version: 1,
			Status:  model.JobStatusNew,
		}
	})

	newOrchestrator := func() *pipeline.Orchestrator {
		return pipeline.NewOrchestrator(client, template.NewRegistry(nil), jobs, settings, nil)
	}

	Describe("Run", func() {
		Context("when every step succeeds", func() {
			It("produces all six output documents and completes the job", func() {
				call := 0
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					call++
					return fmt.Sprintf("document %d", call), nil
				}

				err := newOrchestrator().Run(ctx, job)

				Expect(err).NotTo(HaveOccurred())
				Expect(job.Status).To(Equal(model.JobStatusCompleted))
				Expect(job.Outputs).To(HaveLen(len(pipeline.OutputFiles)))
				for _, file := range pipeline.OutputFiles {
					Expect(job.Outputs[file]).NotTo(BeEmpty(), "missing output %s", file)
				}
			})

			It("overwrites initial documents with their updated versions", func() {
				call := 0
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					call++
					return fmt.Sprintf("document %d", call), nil
				}

				Expect(newOrchestrator().Run(ctx, job)).To(Succeed())

				// Steps 4 and 5 overwrite the documents from steps 1 and 2.
				Expect(job.Outputs["01_tech_lead.md"]).To(Equal("document 4"))
				Expect(job.Outputs["02_business_analyst.md"]).To(Equal("document 5"))
			})

			It("feeds earlier outputs into the cross reviewer prompt", func() {
				var crossReviewPrompt string
				call := 0
				client.completeFn = func(_ context.Context, req llm.Request) (string, error) {
					call++
					if call == 3 {
						crossReviewPrompt = req.Prompt
					}
					return fmt.Sprintf("document %d", call), nil
				}

				Expect(newOrchestrator().Run(ctx, job)).To(Succeed())

				Expect(crossReviewPrompt).To(ContainSubstring("document 1"))
				Expect(crossReviewPrompt).To(ContainSubstring("document 2"))
			})

			It("persists the job after every step", func() {
				saves := 0
				jobs.saveFn = func(_ context.Context, _ *model.Job) error {
					saves++
					return nil
				}
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return "content", nil
				}

				Expect(newOrchestrator().Run(ctx, job)).To(Succeed())

				// Run start + one per step + completion.
				Expect(saves).To(Equal(1 + len(pipeline.Steps) + 1))
			})
		})

		Context("when a step fails", func() {
			It("marks the job failed and reports the failing step", func() {
				call := 0
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					call++
					if call == 3 {
						return "", errors.New("model unavailable")
					}
					return fmt.Sprintf("document %d", call), nil
				}

				err := newOrchestrator().Run(ctx, job)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("cross_reviewer"))
				Expect(job.Status).To(Equal(model.JobStatusFailed))
			})

			It("keeps outputs produced before the failure", func() {
				call := 0
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					call++
					if call == 3 {
						return "", errors.New("boom")
					}
					return fmt.Sprintf("document %d", call), nil
				}

				_ = newOrchestrator().Run(ctx, job)

				Expect(job.Outputs["01_tech_lead.md"]).To(Equal("document 1"))
				Expect(job.Outputs["02_business_analyst.md"]).To(Equal("document 2"))
				Expect(job.Outputs).NotTo(HaveKey("03_questions.md"))
			})
		})

		Context("when a re-run follows a completed run", func() {
			It("starts over with empty outputs", func() {
				job.Outputs = map[string]string{"01_tech_lead.md": "stale"}
				job.Status = model.JobStatusCompleted

				var firstPrompt string
				call := 0
				client.completeFn = func(_ context.Context, req llm.Request) (string, error) {
					call++
					if call == 2 {
						// business_analyst_initial sees the fresh step 1 output,
						// never the stale one.
						firstPrompt = req.Prompt
					}
					return fmt.Sprintf("fresh %d", call), nil
				}

				Expect(newOrchestrator().Run(ctx, job)).To(Succeed())
				Expect(firstPrompt).NotTo(ContainSubstring("stale"))
				Expect(firstPrompt).To(ContainSubstring("fresh 1"))
			})
		})
	})
})
