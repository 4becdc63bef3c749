package grading_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ian.app/engine/common/llm"
	"ian.app/engine/internal/grading"
	"ian.app/engine/internal/model"
)

var _ = Describe("Grader", func() {
	var (
		ctx    context.Context
		client *mockLLM
		grader *grading.Grader
		job    *model.GradingJob
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		grader = grading.NewGrader(client, &mockSettingsStore{})
		job = &model.GradingJob{
			ID:    "g-1",
			Title: "Sprint intake",
			Requirements: []model.Requirement{
				{ID: "req-1", Name: "Login", Content: "Users can log in with SSO"},
				{ID: "req-2", Name: "Fast", Content: "The system should be fast"},
			},
			Teams: []string{"platform", "web"},
		}
	})

	Describe("GradeAll", func() {
		It("grades every requirement", func() {
			client.completeJSONFn = func(_ context.Context, req llm.Request, _ string, _ any, result any) error {
				if strings.Contains(req.Prompt, "req-1") {
					return fillJSON(`{"grade":"A","explanation":"clear","readyForHandoff":true,"assignedTeam":"platform"}`, result)
				}
				return fillJSON(`{"grade":"d","explanation":"vague","readyForHandoff":false}`, result)
			}

			grader.GradeAll(ctx, job)

			Expect(job.GradedRequirements).To(HaveLen(2))
			Expect(job.GradedRequirements[0].Grade).To(Equal(model.GradeA))
			Expect(job.GradedRequirements[0].AssignedTeam).To(Equal("platform"))
			// Lowercase grades from the model are normalized.
			Expect(job.GradedRequirements[1].Grade).To(Equal(model.GradeD))
		})

		It("degrades a single failed requirement to F and continues the batch", func() {
			client.completeJSONFn = func(_ context.Context, req llm.Request, _ string, _ any, result any) error {
				if strings.Contains(req.Prompt, "req-1") {
					return errors.New("malformed response")
				}
				return fillJSON(`{"grade":"B","explanation":"ok","readyForHandoff":true,"assignedTeam":"web"}`, result)
			}

			grader.GradeAll(ctx, job)

			Expect(job.GradedRequirements).To(HaveLen(2))

			failed := job.GradedRequirements[0]
			Expect(failed.Grade).To(Equal(model.GradeF))
			Expect(failed.Explanation).To(ContainSubstring("Could not grade this requirement"))
			Expect(failed.ReadyForHandoff).To(BeFalse())

			Expect(job.GradedRequirements[1].Grade).To(Equal(model.GradeB))
		})

		It("passes the available teams to the model", func() {
			client.completeJSONFn = func(_ context.Context, req llm.Request, _ string, _ any, result any) error {
				Expect(req.Prompt).To(ContainSubstring("platform, web"))
				return fillJSON(`{"grade":"A","explanation":"ok","readyForHandoff":false}`, result)
			}

			grader.GradeAll(ctx, job)
		})

		It("maps an unknown grade letter to F", func() {
			client.completeJSONFn = func(_ context.Context, _ llm.Request, _ string, _ any, result any) error {
				return fillJSON(`{"grade":"Z","explanation":"?","readyForHandoff":false}`, result)
			}

			grader.GradeAll(ctx, job)
			Expect(job.GradedRequirements[0].Grade).To(Equal(model.GradeF))
		})
	})

	Describe("RefineForTeams", func() {
		BeforeEach(func() {
			job.GradedRequirements = []model.GradedRequirement{
				{RequirementID: "req-1", Grade: model.GradeA, ReadyForHandoff: true, AssignedTeam: "platform"},
				{RequirementID: "req-2", Grade: model.GradeD, ReadyForHandoff: false},
			}
		})

		It("refines only handoff-ready requirements with a team", func() {
			client.completeJSONFn = func(_ context.Context, _ llm.Request, _ string, _ any, result any) error {
				return fillJSON(`{"userStory":"As a user, I want SSO, so that login is simple","acceptanceCriteria":["SSO works"],"storyPoints":5}`, result)
			}

			grader.RefineForTeams(ctx, job)

			Expect(job.TeamReadyRequirements).To(HaveLen(1))
			story := job.TeamReadyRequirements[0]
			Expect(story.RequirementID).To(Equal("req-1"))
			Expect(story.Team).To(Equal("platform"))
			Expect(story.StoryPoints).To(Equal(5))
			Expect(story.NeedsSplit).To(BeFalse())
		})

		It("caps oversized estimates and flags them for splitting", func() {
			client.completeJSONFn = func(_ context.Context, _ llm.Request, _ string, _ any, result any) error {
				return fillJSON(`{"userStory":"As a user...","acceptanceCriteria":["a"],"storyPoints":13}`, result)
			}

			grader.RefineForTeams(ctx, job)

			story := job.TeamReadyRequirements[0]
			Expect(story.StoryPoints).To(Equal(model.MaxStoryPoints))
			Expect(story.NeedsSplit).To(BeTrue())
			Expect(story.SplitNote).To(ContainSubstring("13 points"))
		})

		It("skips a requirement whose refinement fails", func() {
			client.completeJSONFn = func(_ context.Context, _ llm.Request, _ string, _ any, result any) error {
				return errors.New("model unavailable")
			}

			grader.RefineForTeams(ctx, job)
			Expect(job.TeamReadyRequirements).To(BeEmpty())
		})
	})
})

var _ = Describe("BuildReport", func() {
	It("summarizes grades and sprint-ready stories", func() {
		job := &model.GradingJob{
			ID:    "g-1",
			Title: "Sprint intake",
			Requirements: []model.Requirement{
				{ID: "req-1", Name: "Login", Content: "Users can log in"},
			},
			GradedRequirements: []model.GradedRequirement{
				{RequirementID: "req-1", Grade: model.GradeA, Explanation: "clear", ReadyForHandoff: true, AssignedTeam: "platform"},
			},
			TeamReadyRequirements: []model.TeamReadyRequirement{
				{RequirementID: "req-1", Team: "platform", UserStory: "As a user...", AcceptanceCriteria: []string{"SSO works"}, StoryPoints: 5},
			},
		}

		grading.BuildReport(job)

		Expect(job.ReportContent).To(ContainSubstring("# Requirements Grading Report"))
		Expect(job.ReportContent).To(ContainSubstring("| A | 1 |"))
		Expect(job.ReportContent).To(ContainSubstring(fmt.Sprintf("**Ready for handoff:** %d of %d", 1, 1)))
		Expect(job.ReportContent).To(ContainSubstring("Login"))
		Expect(job.ReportContent).To(ContainSubstring("Sprint-ready stories"))
		Expect(job.ReportContent).To(ContainSubstring("SSO works"))
	})
})
