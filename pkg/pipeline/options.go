package pipeline

import "github.com/askiada/go-vessel/pkg/pipeline/model"

type StepOption func(s *model.StepInfo)

// StepConcurrency sets how many inputs of an each-step run at the same time.
func StepConcurrency(concurrent int) StepOption {
	return func(s *model.StepInfo) {
		s.Concurrent = concurrent
	}
}

// StepInputs declares files that must exist before the step runs.
func StepInputs(paths ...string) StepOption {
	return func(s *model.StepInfo) {
		s.Inputs = append(s.Inputs, paths...)
	}
}

// StepOutputs declares files the step must have produced when it returns.
func StepOutputs(paths ...string) StepOption {
	return func(s *model.StepInfo) {
		s.Outputs = append(s.Outputs, paths...)
	}
}
