// Package pipeline provides a sequential pipeline for running dependent stages.
//
// Each stage in the pipeline performs a specific operation, usually an external process that reads the files
// written by the previous stage and writes its own. Stages run strictly in the order they were added: a stage
// only starts once the previous one has returned and produced every file it declared as an output.
//
// A stage can declare the files it consumes and the files it produces. The pipeline checks them before and
// after running the stage, so a stage never runs against stale or missing files from a failed predecessor.
//
// By default the pipeline stops on the first encountered error and returns it wrapped with the stage name.
// A pipeline can opt into continuing past failures; errors are then only reported to the pipeline options.
//
// Options hook into every stage (see the model package): the measure package records per-stage durations
// and the drawer package renders the executed stages as a DOT graph.
package pipeline
