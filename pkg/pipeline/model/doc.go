// Package model provides the data structures shared by the pipeline package and its options.
// It defines the step descriptors passed to option hooks and the hook interface itself.
package model
