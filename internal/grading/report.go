package grading

import (
	"fmt"
	"strings"
	"time"

	"ian.app/engine/internal/model"
)

// BuildReport assembles the markdown grading report and stores it on the job.
func BuildReport(job *model.GradingJob) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Requirements Grading Report\n\n")
	fmt.Fprintf(&b, "**Job:** %s\n\n", job.Title)
	fmt.Fprintf(&b, "**Requirements graded:** %d\n\n", len(job.GradedRequirements))

	counts := map[model.Grade]int{}
	ready := 0
	for _, gr := range job.GradedRequirements {
		counts[gr.Grade]++
		if gr.ReadyForHandoff {
			ready++
		}
	}

	b.WriteString("## Grade distribution\n\n")
	b.WriteString("| Grade | Count |\n|---|---|\n")
	for _, grade := range []model.Grade{model.GradeA, model.GradeB, model.GradeC, model.GradeD, model.GradeF} {
		fmt.Fprintf(&b, "| %s | %d |\n", grade, counts[grade])
	}
	fmt.Fprintf(&b, "\n**Ready for handoff:** %d of %d\n\n", ready, len(job.GradedRequirements))

	byID := make(map[string]model.Requirement, len(job.Requirements))
	for _, req := range job.Requirements {
		byID[req.ID] = req
	}

	b.WriteString("## Detail\n\n")
	for _, gr := range job.GradedRequirements {
		name := gr.RequirementID
		if req, ok := byID[gr.RequirementID]; ok {
			name = req.Name
		}
		fmt.Fprintf(&b, "### %s (grade %s)\n\n%s\n\n", name, gr.Grade, gr.Explanation)
		if gr.AssignedTeam != "" {
			fmt.Fprintf(&b, "Assigned team: %s\n\n", gr.AssignedTeam)
		}
	}

	if len(job.TeamReadyRequirements) > 0 {
		b.WriteString("## Sprint-ready stories\n\n")
		for _, story := range job.TeamReadyRequirements {
			fmt.Fprintf(&b, "### %s (%s, %d points)\n\n%s\n\n",
				story.RequirementID, story.Team, story.StoryPoints, story.UserStory)
			for _, ac := range story.AcceptanceCriteria {
				fmt.Fprintf(&b, "- %s\n", ac)
			}
			if story.NeedsSplit {
				fmt.Fprintf(&b, "\n> %s\n", story.SplitNote)
			}
			b.WriteString("\n")
		}
	}

	job.ReportContent = b.String()
	job.UpdatedAt = time.Now().UTC()
}
