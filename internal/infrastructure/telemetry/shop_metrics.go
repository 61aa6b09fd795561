package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrResult    = attribute.Key("result")
	AttrFromState = attribute.Key("from")
	AttrToState   = attribute.Key("to")
	AttrTaskKind  = attribute.Key("task.kind")
	AttrOutcome   = attribute.Key("task.outcome")
)

var durationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// ShopMetrics holds the quotation workflow instruments
type ShopMetrics struct {
	submitted     *Counter
	confirmed     *Counter
	statusChanges *Counter
	syncs         *Counter
	syncDuration  *Histogram
	tasks         *Counter
	taskDuration  *Histogram
}

// NewShopMetrics creates the workflow instruments on meter
func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	var (
		m    ShopMetrics
		err  error
		errs []error
	)
	m.submitted, err = NewCounter(meter, "eshop.quotations.submitted", "Quotations submitted by customers", "{quotation}")
	errs = append(errs, err)
	m.confirmed, err = NewCounter(meter, "eshop.quotations.confirmed", "Quotations confirmed into accounting sales orders", "{quotation}")
	errs = append(errs, err)
	m.statusChanges, err = NewCounter(meter, "eshop.quotations.status_changes", "Quotation status transitions", "{transition}")
	errs = append(errs, err)
	m.syncs, err = NewCounter(meter, "eshop.accounting.syncs", "Accounting bridge runs by result", "{sync}")
	errs = append(errs, err)
	m.syncDuration, err = NewHistogram(meter, "eshop.accounting.sync.duration", "Accounting bridge run duration", "s", durationBuckets)
	errs = append(errs, err)
	m.tasks, err = NewCounter(meter, "eshop.tasks.attempts", "Background task attempts by outcome", "{attempt}")
	errs = append(errs, err)
	m.taskDuration, err = NewHistogram(meter, "eshop.tasks.duration", "Background task attempt duration", "s", durationBuckets)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// QuotationSubmitted counts a new quotation. All recorders are no-ops on a nil receiver.
func (m *ShopMetrics) QuotationSubmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.submitted.Inc(ctx)
}

// QuotationConfirmed counts a confirmation that reached CONFIRMED
func (m *ShopMetrics) QuotationConfirmed(ctx context.Context) {
	if m == nil {
		return
	}
	m.confirmed.Inc(ctx)
}

// StatusChanged counts a status transition
func (m *ShopMetrics) StatusChanged(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.Inc(ctx, AttrFromState.String(from), AttrToState.String(to))
}

// AccountingSync records one accounting bridge run
func (m *ShopMetrics) AccountingSync(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := AttrResult.String("success")
	if err != nil {
		result = AttrResult.String("failure")
	}
	m.syncs.Inc(ctx, result)
	m.syncDuration.RecordDuration(ctx, d, result)
}

// ObserveTask records a task attempt. It satisfies scheduler.Observer.
func (m *ShopMetrics) ObserveTask(kind scheduler.TaskKind, outcome scheduler.Outcome, d time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	kindAttr := AttrTaskKind.String(string(kind))
	m.tasks.Inc(ctx, kindAttr, AttrOutcome.String(string(outcome)))
	m.taskDuration.RecordDuration(ctx, d, kindAttr)
}

var _ scheduler.Observer = (*ShopMetrics)(nil).ObserveTask
