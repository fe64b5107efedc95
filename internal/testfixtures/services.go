package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/validation"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// TimetableServiceDeps captures dependencies for constructing a timetable service.
type TimetableServiceDeps struct {
	Timetables  application.TimetableRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
	Options     []application.TimetableServiceOption
}

// NewTimetableService builds a timetable service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewTimetableService(deps TimetableServiceDeps) *application.TimetableService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTimetableServiceWithLogger(
		deps.Timetables,
		idGen,
		now,
		deps.Logger,
		deps.Options...,
	)
}

// SelectionServiceDeps captures dependencies for constructing a selection service.
type SelectionServiceDeps struct {
	Selections application.SelectionRepository
	Now        func() time.Time
	Logger     *slog.Logger
	Validator  *validation.Validator
}

// NewSelectionService builds a selection service using the supplied dependencies.
func (f *ServiceFactory) NewSelectionService(deps SelectionServiceDeps) *application.SelectionService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSelectionServiceWithLogger(
		deps.Selections,
		now,
		deps.Logger,
		deps.Validator,
	)
}
