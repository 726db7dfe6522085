package model

type StepType string

const (
	RootStepType   StepType = "root"
	NormalStepType StepType = "step"
	EachStepType   StepType = "each"
)

// StepInfo describes a step to the pipeline options.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
	// Inputs are the files that must exist before the step runs.
	Inputs []string
	// Outputs are the files the step must have produced when it returns.
	Outputs []string
}

var (
	StartStep = &StepInfo{Type: RootStepType, Name: "start"}
	EndStep   = &StepInfo{Type: RootStepType, Name: "end"}
)
