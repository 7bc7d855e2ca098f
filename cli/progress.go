package cli

import (
	"fmt"
	"sync"
	"time"
)

// ProgressReporter reports concurrent operation progress
type ProgressReporter struct {
	mu       sync.Mutex
	statuses map[string]string
	start    time.Time
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		statuses: make(map[string]string),
		start:    time.Now(),
	}
}

// Update updates the status of one tracked item
func (p *ProgressReporter) Update(name, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.statuses[name] = status
	p.render()
}

// render displays the current progress
func (p *ProgressReporter) render() {
	// Clear the screen before redrawing
	fmt.Print("\033[H\033[2J")

	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Printf("slate operation in progress... [%s]\n\n", elapsed)

	for name, status := range p.statuses {
		symbol := "[.]"
		switch status {
		case "completed":
			symbol = "[*]"
		case "failed":
			symbol = "[x]"
		case "starting":
			symbol = "[~]"
		}

		fmt.Printf("%s %s: %s\n", symbol, name, status)
	}
}

// Done marks the operation as complete
func (p *ProgressReporter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start).Round(time.Millisecond)
	fmt.Printf("\nOperation completed in %s\n", elapsed)
}