package bank

// ProgressReporter receives callbacks while a digest is assembled.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once the walk has found every candidate file.
	OnDiscoveryComplete(totalFiles int)

	// OnFileProcessed is called after each file is parsed and rendered, or skipped.
	OnFileProcessed(relPath string)

	// OnComplete is called when the digest is assembled.
	OnComplete(renderedFiles int)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(totalFiles int) {}
func (NoOpProgressReporter) OnFileProcessed(relPath string)     {}
func (NoOpProgressReporter) OnComplete(renderedFiles int)       {}
