package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"helpsync/ada"
	"helpsync/client"
	"helpsync/types"
)

// Destination is the part of the knowledge base client the driver needs
type Destination interface {
	CreateArticles(ctx context.Context, payloads []types.DestinationPayload, detail string) (*client.Response, error)
	DeleteArticle(ctx context.Context, id, detail string) (*client.Response, error)
}

// ProgressFunc is called after every processed item
type ProgressFunc func(p types.Progress)

// Options configures one bulk run
type Options struct {
	RunID      string
	Payload    ada.PayloadOptions
	OnProgress ProgressFunc
}

// errMissingID fails a delete whose article carries no id
var errMissingID = errors.New("article has no id")

var (
	createSuccess = map[int]bool{http.StatusOK: true, http.StatusCreated: true}
	deleteSuccess = map[int]bool{http.StatusOK: true, http.StatusNoContent: true}
)

// Driver runs create and delete batches one item at a time.
// A failing item is reported and never stops the batch; nothing is retried.
type Driver struct {
	dest    Destination
	limiter *rate.Limiter
	logger  ada.Logger
	now     func() time.Time
}

// NewDriver creates a driver. itemDelay spaces consecutive calls; 0 disables pacing.
func NewDriver(dest Destination, itemDelay time.Duration, logger ada.Logger) *Driver {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if itemDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(itemDelay), 1)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{dest: dest, limiter: limiter, logger: logger, now: time.Now}
}

// CreateAll sends each article as a single-element bulk create
func (d *Driver) CreateAll(ctx context.Context, articles []types.SourceArticle, opts Options) types.SyncReport {
	report := d.newReport(types.OperationCreate, opts)
	total := len(articles)

	for i, article := range articles {
		item := types.ItemResult{ItemID: article.ID, Name: article.Name}
		detail := fmt.Sprintf("Create article %s", article.ID)

		if err := d.wait(ctx); err != nil {
			d.fail(&item, 0, nil, err)
		} else {
			payload := ada.BuildPayload(article, opts.Payload)
			item.ItemID = payload.ID

			start := d.now()
			resp, err := d.dest.CreateArticles(ctx, []types.DestinationPayload{payload}, detail)
			item.Duration = d.now().Sub(start)
			d.settle(&item, resp, err, createSuccess)
		}

		report.Add(item)
		d.logItem(types.OperationCreate, i+1, total, item)
		d.progress(opts.OnProgress, &report, i+1, total, item)
	}

	report.FinishedAt = d.now()
	return report
}

// DeleteAll deletes each article id with its own request.
// Articles without an id fail without a request.
func (d *Driver) DeleteAll(ctx context.Context, articles []types.DestinationArticle, opts Options) types.SyncReport {
	report := d.newReport(types.OperationDelete, opts)
	total := len(articles)

	for i, article := range articles {
		id := article.ID.String()
		item := types.ItemResult{ItemID: id, Name: article.Name}

		if id == "" {
			d.fail(&item, 0, nil, errMissingID)
		} else if err := d.wait(ctx); err != nil {
			d.fail(&item, 0, nil, err)
		} else {
			start := d.now()
			resp, err := d.dest.DeleteArticle(ctx, id, fmt.Sprintf("Delete article %s", id))
			item.Duration = d.now().Sub(start)
			d.settle(&item, resp, err, deleteSuccess)
		}

		report.Add(item)
		d.logItem(types.OperationDelete, i+1, total, item)
		d.progress(opts.OnProgress, &report, i+1, total, item)
	}

	report.FinishedAt = d.now()
	return report
}

// DeleteIDs deletes bare ids
func (d *Driver) DeleteIDs(ctx context.Context, ids []string, opts Options) types.SyncReport {
	articles := make([]types.DestinationArticle, len(ids))
	for i, id := range ids {
		articles[i] = types.DestinationArticle{ID: types.FlexibleID(id)}
	}
	return d.DeleteAll(ctx, articles, opts)
}

func (d *Driver) newReport(op types.Operation, opts Options) types.SyncReport {
	return types.SyncReport{
		RunID:             opts.RunID,
		Operation:         op,
		KnowledgeSourceID: opts.Payload.KnowledgeSourceID,
		StartedAt:         d.now(),
		Items:             make([]types.ItemResult, 0),
	}
}

// wait paces calls; once ctx is done every remaining item fails fast
func (d *Driver) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.limiter.Wait(ctx)
}

// settle applies the success predicate to one response
func (d *Driver) settle(item *types.ItemResult, resp *client.Response, err error, success map[int]bool) {
	if err != nil {
		d.fail(item, 0, nil, err)
		return
	}
	if !success[resp.StatusCode] {
		d.fail(item, resp.StatusCode, resp.Body, nil)
		return
	}
	item.Outcome = types.OutcomeSuccess
	item.StatusCode = resp.StatusCode
}

// fail records the error detail: parsed JSON body, else raw text, else the error message
func (d *Driver) fail(item *types.ItemResult, status int, body []byte, err error) {
	item.Outcome = types.OutcomeFailure
	item.StatusCode = status

	if status != 0 {
		rej := &client.RemoteRejection{StatusCode: status, Body: body}
		item.ErrorBody = client.ParsedBody(body)
		item.Detail = fmt.Sprintf("HTTP %d: %s", status, rej.Detail())
		return
	}
	item.Detail = err.Error()
}

func (d *Driver) logItem(op types.Operation, current, total int, item types.ItemResult) {
	if item.Outcome == types.OutcomeSuccess {
		d.logger.Printf("✓ [%d/%d] %s %s (%.2fs)", current, total, op, item.ItemID, item.Duration.Seconds())
		return
	}
	d.logger.Printf("✗ [%d/%d] %s %s failed: %s", current, total, op, item.ItemID, item.Detail)
}

func (d *Driver) progress(fn ProgressFunc, report *types.SyncReport, current, total int, item types.ItemResult) {
	if fn == nil {
		return
	}
	verb := "Created"
	if report.Operation == types.OperationDelete {
		verb = "Deleted"
	}
	detail := fmt.Sprintf("%s %s", verb, item.ItemID)
	if item.Outcome == types.OutcomeFailure {
		detail = fmt.Sprintf("Failed %s: %s", item.ItemID, item.Detail)
	}
	fn(types.Progress{
		Current:   current,
		Total:     total,
		Succeeded: report.SuccessCount,
		Failed:    report.FailureCount,
		Detail:    detail,
	})
}
