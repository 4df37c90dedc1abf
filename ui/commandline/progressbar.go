// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/facenoise/pkg/corpus"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// maxUpdateFrequency is the time between updates to the commandline display of stats.
var maxUpdateFrequency = time.Millisecond * 200

// numStatsRows is the number of rows in the stats table drawn above the progress bar.
const numStatsRows = 5

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// ProgressBar displays the progress of a corpus run: a bar over the images of the corpus and,
// above it, a table with the subjects finished so far.
//
// It implements corpus.Progress. Updates are queued and drawn asynchronously, so workers are
// not slowed down by the terminal. Call Finish after the run.
type ProgressBar struct {
	out     io.Writer
	termenv *termenv.Output
	bar     *progressbar.ProgressBar

	statsStyle    lipgloss.Style
	statsTable    *lgtable.Table
	isFirstOutput bool

	updates          chan progressUpdate
	asyncUpdatesDone sync.WaitGroup
	finishOnce       sync.Once

	// Owned by the drawing goroutine.
	start                         time.Time
	subjectsDone, failed, skipped int
	imagesWritten                 int
	lastSubject                   string
}

var _ corpus.Progress = (*ProgressBar)(nil)

type progressUpdate struct {
	images  int
	subject *corpus.Result
}

// NewProgressBar creates a ProgressBar that draws to out, usually os.Stdout.
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{
		out:           out,
		termenv:       termenv.NewOutput(out),
		isFirstOutput: true,
		statsStyle:    lipgloss.NewStyle().PaddingLeft(8),
		statsTable: lgtable.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if col == 0 {
					return rightAlignedStyle
				}
				return normalStyle
			}),
	}
}

// Start implements corpus.Progress.
func (p *ProgressBar) Start(totalImages int) {
	p.start = time.Now()
	if totalImages > 0 {
		p.bar = progressbar.NewOptions(totalImages,
			progressbar.OptionSetDescription("      [bold]"),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionSetTheme(ProgressbarStyle),
			progressbar.OptionSetWriter(p.out),
		)
	}
	p.updates = make(chan progressUpdate, 1000) // Large buffer so workers are not blocked.
	p.asyncUpdatesDone.Add(1)
	go p.drawLoop()
}

// ImageDone implements corpus.Progress.
func (p *ProgressBar) ImageDone() {
	p.updates <- progressUpdate{images: 1}
}

// SubjectDone implements corpus.Progress.
func (p *ProgressBar) SubjectDone(result corpus.Result) {
	p.updates <- progressUpdate{subject: &result}
}

// Finish draws the pending updates and restores the cursor. It is a no-op if Start was never
// called, and it can be called more than once.
func (p *ProgressBar) Finish() {
	if p.updates == nil {
		return
	}
	p.finishOnce.Do(func() {
		close(p.updates)
		p.asyncUpdatesDone.Wait()
		p.termenv.ShowCursor()
		_, _ = fmt.Fprintln(p.out)
	})
}

func (p *ProgressBar) apply(update progressUpdate) {
	if update.subject == nil {
		return
	}
	p.subjectsDone++
	p.lastSubject = update.subject.Subject
	p.imagesWritten += update.subject.ImagesWritten
	switch update.subject.Status {
	case corpus.StatusFailed:
		p.failed++
	case corpus.StatusSkipped:
		p.skipped++
	}
}

// drawLoop consumes the updates until the channel is closed.
func (p *ProgressBar) drawLoop() {
	defer p.asyncUpdatesDone.Done()
	for update := range p.updates {
		// Exhaust the updates in the buffer.
		amount := update.images
		p.apply(update)
	exhaust:
		for {
			select {
			case newUpdate, ok := <-p.updates:
				if !ok {
					break exhaust
				}
				amount += newUpdate.images
				p.apply(newUpdate)
			default:
				break exhaust
			}
		}
		p.draw(amount)
		time.Sleep(maxUpdateFrequency)
	}
}

func (p *ProgressBar) draw(amount int) {
	p.statsTable.Data(lgtable.NewStringData())
	p.statsTable.Row("Subjects done", humanize.Comma(int64(p.subjectsDone)))
	p.statsTable.Row("Failed / skipped", fmt.Sprintf("%s / %s",
		humanize.Comma(int64(p.failed)), humanize.Comma(int64(p.skipped))))
	p.statsTable.Row("Last subject", p.lastSubject)
	p.statsTable.Row("Images written", humanize.Comma(int64(p.imagesWritten)))
	p.statsTable.Row("Elapsed", FormatDuration(time.Since(p.start)))

	// Clear the previous lines that will be overwritten.
	p.termenv.HideCursor()
	if !p.isFirstOutput {
		// Rows, the 2 borders of the table and the progress bar line.
		p.termenv.CursorPrevLine(numStatsRows + 2 + 1)
	}
	p.isFirstOutput = false

	_, _ = fmt.Fprintln(p.out, p.statsStyle.Render(p.statsTable.String()))
	if p.bar != nil && amount > 0 {
		_ = p.bar.Add(amount) // Prints progress bar line.
	} else if p.bar != nil {
		_ = p.bar.RenderBlank()
	}
	_, _ = fmt.Fprintln(p.out)
	p.termenv.ShowCursor()
}
