// Package dispatch runs the analysis pipeline and forwards the report to
// the notification channel.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/zlisto/financial-analyst-bot/pkg/notify"
	"github.com/zlisto/financial-analyst-bot/pkg/pipeline"
	"github.com/zlisto/financial-analyst-bot/pkg/report"
	"github.com/zlisto/financial-analyst-bot/pkg/search"
)

// Subject is the fixed notification subject line.
const Subject = "Bitcoin Trading Analysis Report - Daily Update"

// Dispatcher wires the search connector, pipeline, report writer, and
// sender into one run.
type Dispatcher struct {
	Pipeline  *pipeline.Pipeline
	Search    *search.Client
	Writer    *report.Writer
	Sender    notify.Sender
	Recipient string
	Query     string
	RunsDir   string
	Logger    *log.Logger
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger == nil {
		d.Logger = log.New(log.Writer(), "[dispatch] ", log.LstdFlags)
	}
	return d.Logger
}

// Analyze runs the pipeline against fresh search results and persists the
// rendered report. A worker failure aborts the run and propagates.
func (d *Dispatcher) Analyze(ctx context.Context) (*pipeline.RunResult, error) {
	logger := d.logger()

	articles := d.Search.FormattedSearch(ctx, d.Query)
	if search.IsErrorResult(articles) {
		// Degraded input, not a failure: the stages see the diagnostic
		// string as content and report accordingly.
		logger.Printf("search degraded: %s", articles)
	}

	result, err := pipeline.Run(ctx, d.Pipeline, pipeline.RunOptions{
		Input:   articles,
		RunsDir: d.RunsDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline run failed: %w", err)
	}

	if err := d.Writer.Write(result.Final.Content); err != nil {
		return nil, err
	}
	logger.Printf("report written to %s (run %s)", d.Writer.Path(), result.RunID)
	return result, nil
}

// Dispatch runs Analyze and emails the resulting artifact. A missing
// artifact or a transmission failure is an error so a scheduled run records
// the failure.
func (d *Dispatcher) Dispatch(ctx context.Context) error {
	if _, err := d.Analyze(ctx); err != nil {
		return err
	}
	return d.Notify(ctx)
}

// Notify mails the report artifact currently on disk. It checks for the
// artifact before attempting transmission.
func (d *Dispatcher) Notify(ctx context.Context) error {
	if !d.Writer.Exists() {
		return fmt.Errorf("report file not found: %s", d.Writer.Path())
	}

	content, err := d.Writer.Read()
	if err != nil {
		return err
	}

	msg := notify.Message{
		To:             d.Recipient,
		Subject:        Subject,
		HTMLBody:       wrapBody(content),
		AttachmentPath: d.Writer.Path(),
	}

	if ok := d.Sender.Send(ctx, msg); !ok {
		return fmt.Errorf("email failed to send to %s", d.Recipient)
	}
	d.logger().Printf("report %s dispatched to %s", filepath.Base(d.Writer.Path()), d.Recipient)
	return nil
}

// wrapBody puts the report inside the notification envelope: a short
// preamble followed by the full document inline.
func wrapBody(content string) string {
	return fmt.Sprintf(`<html>
  <head></head>
  <body>
    <h2>Your Bitcoin Trading Analysis Report</h2>
    <p>Hey! Here's your daily Bitcoin analysis report. Check it out below!</p>
    <hr>
    %s
  </body>
</html>`, content)
}
