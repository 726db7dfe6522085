// Package vessel describes the command line contract of the external vessel segmentation tool.
//
// The tool is opaque: it is driven through argument lists and communicates with the caller through files
// written in its working directory. This package holds the per-dataset tuning constants, builds the argument
// list of every stage and runs the tool as a child process.
package vessel
