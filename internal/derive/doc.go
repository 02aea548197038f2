// Package derive holds the configuration value threaded through derivation
// and the machinery that applies derivation procedures to it.
//
// A [Config] is immutable: procedures read it and return a new value built
// with a [Builder]. Procedures declare the keys they require, provide and
// consume, and [Order] sorts them so every key is produced before it is read
// and deleted only after every reader has run. [ApplyAll] is the entry point
// used by the pipeline.
package derive
