package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the business counters of the reservation backend.
type Metrics struct {
	workflowTransitions metric.Int64Counter
	accountsRegistered  metric.Int64Counter
	lessonsCreated      metric.Int64Counter
	reviewsAdded        metric.Int64Counter
	deniedRequests      metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.workflowTransitions, err = meter.Int64Counter(
		"developer.workflow.transitions",
		metric.WithDescription("Committed approval and enrollment transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	m.accountsRegistered, err = meter.Int64Counter(
		"developer.accounts.registered",
		metric.WithDescription("Accounts registered by kind"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, err
	}

	m.lessonsCreated, err = meter.Int64Counter(
		"developer.lessons.created",
		metric.WithDescription("Lessons opened by tutors"),
		metric.WithUnit("{lesson}"),
	)
	if err != nil {
		return nil, err
	}

	m.reviewsAdded, err = meter.Int64Counter(
		"developer.reviews.added",
		metric.WithDescription("Lesson reviews written"),
		metric.WithUnit("{review}"),
	)
	if err != nil {
		return nil, err
	}

	m.deniedRequests, err = meter.Int64Counter(
		"developer.workflow.denied",
		metric.WithDescription("Workflow calls rejected by the role gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTransition counts a committed state change such as "tutor.approved".
func (m *Metrics) RecordTransition(ctx context.Context, transition string) {
	if m != nil && m.workflowTransitions != nil {
		m.workflowTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", transition)))
	}
}

func (m *Metrics) RecordRegistration(ctx context.Context, kind string) {
	if m != nil && m.accountsRegistered != nil {
		m.accountsRegistered.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *Metrics) RecordLessonCreated(ctx context.Context) {
	if m != nil && m.lessonsCreated != nil {
		m.lessonsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReviewAdded(ctx context.Context) {
	if m != nil && m.reviewsAdded != nil {
		m.reviewsAdded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDenied(ctx context.Context, operation string) {
	if m != nil && m.deniedRequests != nil {
		m.deniedRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// NewMock creates a no-op Metrics instance for testing
func NewMock() *Metrics {
	return &Metrics{}
}
