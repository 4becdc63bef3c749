package pipeline

import "ian.app/engine/internal/model"

// Fixed output filenames. These are the step contract, stable across the
// whole system: persisted layouts, changelog comparison and prompt variable
// construction all key on them.
const (
	OutputTechLead        = "01_tech_lead.md"
	OutputBusinessAnalyst = "02_business_analyst.md"
	OutputQuestions       = "03_questions.md"
	OutputRequirements    = "04_requirements_spec.md"
	OutputProductBacklog  = "05_product_backlog.md"
	OutputExecSummary     = "06_exec_summary.md"
)

// OutputFiles lists every legal key of Job.Outputs.
var OutputFiles = []string{
	OutputTechLead,
	OutputBusinessAnalyst,
	OutputQuestions,
	OutputRequirements,
	OutputProductBacklog,
	OutputExecSummary,
}

// Prompt variable keys.
const (
	VarTaskTitle       = "TASK_TITLE"
	VarTaskDescription = "TASK_DESCRIPTION"
	VarReference       = "REFERENCE_CONTENT"
	VarTechLead        = "TECH_LEAD_CONTENT"
	VarBusinessAnalyst = "BUSINESS_ANALYST_CONTENT"
	VarQuestions       = "QUESTIONS_CONTENT"
	VarRequirements    = "REQUIREMENTS_CONTENT"
	VarProductBacklog  = "PRODUCT_BACKLOG_CONTENT"
)

// NotYetAvailable substitutes for an upstream output that has not been
// produced. Steps degrade rather than fail on missing inputs.
const NotYetAvailable = "Not yet available"

// StepChangelogAgent is not part of the run sequence; the version subsystem
// invokes it directly.
const StepChangelogAgent = "changelog_agent"

// Steps is the fixed document pipeline, in execution order.
var Steps = []model.PipelineStep{
	{ID: "tech_lead_initial", Order: 1, Name: "Tech Lead", Description: "Initial technical analysis", OutputFile: OutputTechLead},
	{ID: "business_analyst_initial", Order: 2, Name: "Business Analyst", Description: "Initial business analysis", OutputFile: OutputBusinessAnalyst},
	{ID: "cross_reviewer", Order: 3, Name: "Cross Reviewer", Description: "Cross-review questions", OutputFile: OutputQuestions},
	{ID: "tech_lead_update", Order: 4, Name: "Tech Lead Update", Description: "Technical analysis revised against review questions", OutputFile: OutputTechLead},
	{ID: "business_analyst_update", Order: 5, Name: "Business Analyst Update", Description: "Business analysis revised against review questions", OutputFile: OutputBusinessAnalyst},
	{ID: "requirements_agent", Order: 6, Name: "Requirements Engineer", Description: "Requirements specification", OutputFile: OutputRequirements},
	{ID: "product_owner", Order: 7, Name: "Product Owner", Description: "Prioritized product backlog", OutputFile: OutputProductBacklog},
	{ID: "executive_assistant", Order: 8, Name: "Executive Assistant", Description: "Executive summary", OutputFile: OutputExecSummary},
}

// stepInputs maps each step to the upstream outputs it consumes, as
// variable-key → output-file pairs. Every step additionally receives
// TASK_TITLE, TASK_DESCRIPTION and REFERENCE_CONTENT.
var stepInputs = map[string][]stepInput{
	"tech_lead_initial": nil,
	"business_analyst_initial": {
		{VarTechLead, OutputTechLead},
	},
	"cross_reviewer": {
		{VarTechLead, OutputTechLead},
		{VarBusinessAnalyst, OutputBusinessAnalyst},
	},
	"tech_lead_update": {
		{VarTechLead, OutputTechLead},
		{VarBusinessAnalyst, OutputBusinessAnalyst},
		{VarQuestions, OutputQuestions},
	},
	"business_analyst_update": {
		{VarBusinessAnalyst, OutputBusinessAnalyst},
		{VarTechLead, OutputTechLead},
		{VarQuestions, OutputQuestions},
	},
	"requirements_agent": {
		{VarTechLead, OutputTechLead},
		{VarBusinessAnalyst, OutputBusinessAnalyst},
		{VarQuestions, OutputQuestions},
	},
	"product_owner": {
		{VarRequirements, OutputRequirements},
		{VarTechLead, OutputTechLead},
		{VarBusinessAnalyst, OutputBusinessAnalyst},
	},
	"executive_assistant": {
		{VarRequirements, OutputRequirements},
		{VarProductBacklog, OutputProductBacklog},
	},
}

type stepInput struct {
	varKey     string
	outputFile string
}

// BuildStepVariables assembles the variable map for one step from the job's
// fields and previously produced outputs.
func BuildStepVariables(job *model.Job, step model.PipelineStep) map[string]string {
	vars := map[string]string{
		VarTaskTitle:       job.Title,
		VarTaskDescription: job.Description,
		VarReference:       BuildReferenceContent(job),
	}

	for _, in := range stepInputs[step.ID] {
		content, ok := job.Outputs[in.outputFile]
		if !ok || content == "" {
			content = NotYetAvailable
		}
		vars[in.varKey] = content
	}

	return vars
}
