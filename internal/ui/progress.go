package ui

import (
	"github.com/schollz/progressbar/v3"
)

// Progress is a paragraph counter for script narration.
type Progress struct {
	bar *progressbar.ProgressBar
}

func NewProgress(total int, description string) *Progress {
	return &Progress{bar: progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(Out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowBytes(false),
		progressbar.OptionClearOnFinish(),
	)}
}

// Step moves the bar to done paragraphs and shows what is being spoken.
func (p *Progress) Step(done int, label string) {
	p.bar.Describe(label)
	_ = p.bar.Set(done)
}

func (p *Progress) Finish() {
	_ = p.bar.Finish()
}
