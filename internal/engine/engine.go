// Package engine holds the consistency rules that keep users, thoughts and
// their cross references in step. Every operation is a fixed sequence of
// store calls. Without store transactions only the first call of a
// cascade is guaranteed; later steps are best effort and their failures
// are logged and counted, never returned.
package engine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"netlibrarium/internal/database"
	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Publisher receives activity events after successful mutations.
type Publisher interface {
	Publish(event models.Event)
}

type Engine struct {
	store     database.Store
	metrics   *utils.MetricsCollector
	publisher Publisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewEngine wires the rules to a store. metrics and publisher may be nil.
func NewEngine(store database.Store, metrics *utils.MetricsCollector, publisher Publisher) *Engine {
	return &Engine{
		store:     store,
		metrics:   metrics,
		publisher: publisher,
		validate:  newValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the store connection.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// CountUsers is used by the health endpoint.
func (e *Engine) CountUsers(ctx context.Context) (int64, error) {
	n, err := e.store.CountUsers(ctx)
	if err != nil {
		return 0, storeError(err, "Failed to count users")
	}
	return n, nil
}

func (e *Engine) track(operation string, start time.Time) {
	if e.metrics != nil {
		e.metrics.AddOperationLatency(operation, time.Since(start))
	}
}

func (e *Engine) publish(event models.Event) {
	if e.publisher == nil {
		return
	}
	event.At = e.now()
	e.publisher.Publish(event)
}

// followUp runs a cascade step that comes after the primary write. Inside a
// transaction a failure aborts the whole cascade. Otherwise the failure is
// logged and counted and the cascade carries on.
func (e *Engine) followUp(step string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if e.store.SupportsTransactions() {
		return errors.Wrap(err, step)
	}
	if e.metrics != nil {
		e.metrics.IncrementCascadeFailures(step)
	}
	log.Warn().Err(err).Str("step", step).Msg("Cascade step failed and was not rolled back")
	return nil
}

// storeError passes AppErrors through and wraps anything else as a database error.
func storeError(err error, message string) error {
	if _, ok := utils.AsAppError(err); ok {
		return err
	}
	return utils.NewDatabaseError(message, err)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// checkStruct validates in against its struct tags.
func (e *Engine) checkStruct(in interface{}) error {
	if err := e.validate.Struct(in); err != nil {
		return validationError("", err)
	}
	return nil
}

// checkVar validates a single value, naming it field in the message.
func (e *Engine) checkVar(field string, value interface{}, tag string) error {
	if err := e.validate.Var(value, tag); err != nil {
		return validationError(field, err)
	}
	return nil
}

func validationError(field string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return utils.NewAppError(utils.ErrValidation, "Validation failed", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		msgs = append(msgs, describeFieldError(name, fe))
	}
	return utils.NewValidationError(strings.Join(msgs, "; "))
}

func describeFieldError(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
