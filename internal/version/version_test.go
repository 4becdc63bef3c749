package version_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ian.app/engine/common/llm"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/pipeline"
	"ian.app/engine/internal/template"
	"ian.app/engine/internal/version"
)

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		client   *mockLLM
		settings *mockSettingsStore
		svc      *version.Service
		job      *model.Job
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		settings = &mockSettingsStore{}
		svc = version.NewService(client, template.NewRegistry(nil), settings)
		job = &model.Job{
			ID:          "job-1",
			Title:       "Checkout revamp",
			Description: "Original description",
			Status:      model.JobStatusCompleted,
			Version:     1,
			Changelog:   "Initial version - no previous changes to compare.",
			Outputs: map[string]string{
				pipeline.OutputTechLead:     "tech v1",
				pipeline.OutputRequirements: "reqs v1",
			},
			ReferenceFolders: []string{"/specs"},
		}
	})

	Describe("CreateVersion", func() {
		It("snapshots the current state and bumps the version", func() {
			svc.CreateVersion(job, "add refunds", []string{"/refund-docs"}, nil)

			Expect(job.Version).To(Equal(2))
			Expect(job.VersionHistory).To(HaveLen(1))

			snapshot := job.VersionHistory[0]
			Expect(snapshot.Version).To(Equal(1))
			Expect(snapshot.ChangeReason).To(Equal("add refunds"))
			Expect(snapshot.Outputs).To(HaveKeyWithValue(pipeline.OutputTechLead, "tech v1"))
			Expect(snapshot.Status).To(Equal(model.JobStatusCompleted))
		})

		It("resets the job for a fresh run", func() {
			job.CurrentStep = "executive_assistant"

			svc.CreateVersion(job, "add refunds", nil, nil)

			Expect(job.Outputs).To(BeEmpty())
			Expect(job.Changelog).To(BeEmpty())
			Expect(job.Status).To(Equal(model.JobStatusNew))
			Expect(job.CurrentStep).To(BeEmpty())
		})

		It("merges new reference material and appends the change reason", func() {
			svc.CreateVersion(job, "add refunds", []string{"/refund-docs"}, []model.ReferenceFile{
				{Name: "r.md", Path: "r.md", Content: "refund rules"},
			})

			Expect(job.ReferenceFolders).To(Equal([]string{"/specs", "/refund-docs"}))
			Expect(job.ReferenceFiles).To(HaveLen(1))
			Expect(job.Description).To(ContainSubstring("--- Version 2 update ---"))
			Expect(job.Description).To(ContainSubstring("add refunds"))
		})

		It("isolates the snapshot from later job mutations", func() {
			svc.CreateVersion(job, "change", nil, nil)

			job.Outputs = map[string]string{pipeline.OutputTechLead: "tech v2"}
			job.ReferenceFolders = append(job.ReferenceFolders, "/later")

			snapshot := job.VersionHistory[0]
			Expect(snapshot.Outputs[pipeline.OutputTechLead]).To(Equal("tech v1"))
			Expect(snapshot.ReferenceFolders).To(Equal([]string{"/specs"}))
		})

		It("maintains the version arithmetic across repeated bumps", func() {
			svc.CreateVersion(job, "second", nil, nil)
			svc.CreateVersion(job, "third", nil, nil)

			Expect(job.Version).To(Equal(3))
			Expect(job.VersionHistory).To(HaveLen(2))
			Expect(job.Version).To(Equal(len(job.VersionHistory) + 1))
		})
	})

	Describe("GenerateChangelog", func() {
		Context("for the initial version", func() {
			It("returns the initial literal without calling the model", func() {
				called := false
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					called = true
					return "", nil
				}

				got := svc.GenerateChangelog(ctx, nil, job)

				Expect(got).To(Equal(version.InitialVersionChangelog))
				Expect(called).To(BeFalse())
			})

			It("returns the initial literal when the previous snapshot is version 1", func() {
				called := false
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					called = true
					return "ai changelog", nil
				}

				svc.CreateVersion(job, "add refunds", nil, nil)
				prev := &job.VersionHistory[0]
				job.Outputs = map[string]string{pipeline.OutputTechLead: "tech v2"}

				got := svc.GenerateChangelog(ctx, prev, job)

				Expect(got).To(Equal(version.InitialVersionChangelog))
				Expect(called).To(BeFalse())
			})
		})

		Context("for a later version", func() {
			var prev *model.VersionSnapshot

			BeforeEach(func() {
				svc.CreateVersion(job, "first rework", nil, nil)
				job.Outputs = map[string]string{
					pipeline.OutputTechLead:     "tech v2",
					pipeline.OutputRequirements: "reqs v1",
				}
				job.Status = model.JobStatusCompleted

				svc.CreateVersion(job, "add refunds", nil, nil)
				prev = &job.VersionHistory[1]
				job.Outputs = map[string]string{
					pipeline.OutputTechLead:     "tech v3",
					pipeline.OutputRequirements: "reqs v1",
				}
			})

			It("returns the model's changelog", func() {
				client.completeFn = func(_ context.Context, req llm.Request) (string, error) {
					// The prompt carries the change reason and changed documents.
					Expect(req.Prompt).To(ContainSubstring("add refunds"))
					Expect(req.Prompt).To(ContainSubstring(pipeline.OutputTechLead))
					return "## Version 3 - Refund support\n\nAdded refund handling.", nil
				}

				got := svc.GenerateChangelog(ctx, prev, job)
				Expect(got).To(ContainSubstring("Refund support"))
			})

			It("degrades to the fallback text when generation fails", func() {
				client.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return "", errors.New("model unavailable")
				}

				got := svc.GenerateChangelog(ctx, prev, job)
				Expect(got).To(Equal(version.ChangelogUnavailable))
			})
		})
	})
})
