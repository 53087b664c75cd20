// Package pipeline runs the cdrnet subcommands as a chain of processes connected by channels.
// It follows the pattern described by S. Lampa - Patterns for composable concurrent pipelines in Go (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
package pipeline

// BUFFERSIZE is the size of the buffer used by the pipeline channels
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline is the base type, which takes any types that satisfy the process interface
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcesses is a method to add one or more processes to the pipeline, in the order they pass data along
func (Pipeline *Pipeline) AddProcesses(procs ...process) {
	Pipeline.processes = append(Pipeline.processes, procs...)
}

// Run is a method that starts the pipeline and returns once the last process has finished
// every process but the last is run in its own go routine, the last one runs in the foreground
func (Pipeline *Pipeline) Run() {
	if len(Pipeline.processes) == 0 {
		return
	}
	last := len(Pipeline.processes) - 1
	for _, proc := range Pipeline.processes[:last] {
		go proc.Run()
	}
	Pipeline.processes[last].Run()
}

// GetNumProcesses is a method to return the number of processes registered in a pipeline
func (Pipeline *Pipeline) GetNumProcesses() int {
	return len(Pipeline.processes)
}
