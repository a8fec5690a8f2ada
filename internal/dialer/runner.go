package dialer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/lead"
	"github.com/sells-group/outbound-dialer/internal/model"
	"github.com/sells-group/outbound-dialer/internal/store"
)

// NoSourceMessage is reported when a run starts before any upload exists.
const NoSourceMessage = "No lead file uploaded. Please upload a file first."

// ErrUploadNotFound is returned when a run names an upload that does not exist.
var ErrUploadNotFound = eris.New("dialer: upload not found")

// Uploads is the read side of the upload store.
type Uploads interface {
	GetUpload(ctx context.Context, id string) (*model.Upload, error)
	LatestUpload(ctx context.Context) (*model.Upload, error)
}

// AgentInspector logs the voice agent's configuration before a run.
type AgentInspector interface {
	InspectAgent(ctx context.Context)
}

// Reporter is told about every finished batch.
type Reporter interface {
	Report(ctx context.Context, res *Result)
}

// Result is the operator-facing outcome of a run.
type Result struct {
	UploadID string            `json:"upload_id,omitempty"`
	Message  string            `json:"message"`
	Summary  *Summary          `json:"summary,omitempty"`
	Skipped  []lead.SkippedRow `json:"skipped,omitempty"`
}

// Runner resolves a lead source and drives one batch over it.
type Runner struct {
	uploads  Uploads
	batch    *Batch
	agent    AgentInspector
	reporter Reporter
}

// NewRunner creates a Runner. agent may be nil to skip the config fetch.
func NewRunner(uploads Uploads, batch *Batch, agent AgentInspector) *Runner {
	return &Runner{uploads: uploads, batch: batch, agent: agent}
}

// WithReporter sets a Reporter notified after each batch.
func (r *Runner) WithReporter(rep Reporter) *Runner {
	r.reporter = rep
	return r
}

// Run executes one batch over the upload with the given id, or the most
// recent upload when id is empty. A missing source is reported in the
// message rather than as an error, except for an explicit unknown id.
func (r *Runner) Run(ctx context.Context, uploadID string) (*Result, error) {
	zap.L().Info("dialer: starting batch outbound calls", zap.String("upload_id", uploadID))

	if r.agent != nil {
		r.agent.InspectAgent(ctx)
	}

	up, err := r.resolve(ctx, uploadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if uploadID != "" {
				return nil, eris.Wrapf(ErrUploadNotFound, "upload %s", uploadID)
			}
			zap.L().Warn("dialer: no lead file uploaded")
			return &Result{Message: NoSourceMessage}, nil
		}
		return nil, eris.Wrap(err, "dialer: load upload")
	}

	format, ok := lead.FormatFor(up.Filename)
	if !ok {
		format = lead.FormatCSV
	}
	sheet, err := lead.Parse(format, up.Content)
	if err != nil {
		zap.L().Error("dialer: read lead file", zap.String("upload_id", up.ID), zap.Error(err))
		return &Result{UploadID: up.ID, Message: fmt.Sprintf("Error reading lead file: %v", err)}, nil
	}

	for _, s := range sheet.Skipped {
		zap.L().Warn("dialer: skipping row",
			zap.String("upload_id", up.ID),
			zap.Int("row", s.Row),
			zap.String("reason", s.Reason),
		)
	}

	sum, _ := r.batch.Run(ctx, sheet.Leads)
	sum.Skipped = len(sheet.Skipped)

	res := &Result{
		UploadID: up.ID,
		Message:  sum.String(),
		Summary:  &sum,
		Skipped:  sheet.Skipped,
	}
	if r.reporter != nil {
		r.reporter.Report(context.WithoutCancel(ctx), res)
	}
	return res, nil
}

func (r *Runner) resolve(ctx context.Context, uploadID string) (*model.Upload, error) {
	if uploadID == "" {
		return r.uploads.LatestUpload(ctx)
	}
	return r.uploads.GetUpload(ctx, uploadID)
}
