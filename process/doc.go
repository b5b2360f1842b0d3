// Package process holds the pieces a process needs from its host: the
// declarative descriptor model (slug, version, typed input and output
// fields), progress and message reporting, the execution environment, and
// staging of input files into the working directory.
//
// A process is a plain function over an *Env and typed input/output
// records; the descriptor is static data describing those records.
package process
