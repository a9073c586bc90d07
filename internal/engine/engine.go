// Package engine implements the kitchen service: validated dish and task
// management plus plan calculation on top of the stores.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
	"github.com/hammamikhairi/cooksync/internal/plan"
)

// Option configures the engine.
type Option func(*Engine)

// WithClock sets the time source used for created-at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPlanBuilder replaces the default plan builder.
func WithPlanBuilder(b *plan.Builder) Option {
	return func(e *Engine) {
		e.builder = b
	}
}

// Engine manages a cook's dishes and tasks. It depends only on interfaces
// and is fully testable with the memory store.
type Engine struct {
	dishes   domain.DishStore
	tasks    domain.TaskStore
	builder  *plan.Builder
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

// New creates a kitchen engine with the given dependencies and options.
func New(dishes domain.DishStore, tasks domain.TaskStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		dishes:   dishes,
		tasks:    tasks,
		builder:  plan.New(),
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InstructionInput is a timed instruction as submitted by the user.
type InstructionInput struct {
	Label        string `json:"label" validate:"required"`
	AfterMinutes int    `json:"afterMinutes" validate:"min=0"`
}

// DishInput is a dish form submission. Pointers distinguish "missing"
// from zero.
type DishInput struct {
	Name         string             `json:"name" validate:"required"`
	Temperature  *float64           `json:"temperature" validate:"required_unless=Appliance Microwave"`
	Unit         domain.TempUnit    `json:"unit" validate:"omitempty,oneof=C F"`
	Appliance    domain.Appliance   `json:"appliance" validate:"omitempty,oneof=Oven 'Air Fryer' Microwave"`
	OvenType     domain.OvenType    `json:"ovenType" validate:"omitempty,oneof=Fan Electric Gas"`
	CookingTime  *int               `json:"cookingTime" validate:"required"`
	Instructions []InstructionInput `json:"instructions" validate:"dive"`
}

// TaskInput is a task form submission.
type TaskInput struct {
	Name         string             `json:"name" validate:"required"`
	Kind         domain.TaskKind    `json:"taskType" validate:"omitempty,oneof=duration trigger"`
	Duration     *int               `json:"duration"`
	TriggerAt    *int               `json:"triggerAt"`
	Instructions []InstructionInput `json:"instructions" validate:"dive"`
}

// ListDishes returns the owner's dishes.
func (e *Engine) ListDishes(ctx context.Context, owner string) ([]*domain.Dish, error) {
	return e.dishes.ListDishes(ctx, owner)
}

// AddDish validates the input and stores a new dish. Nothing is stored
// when validation fails.
func (e *Engine) AddDish(ctx context.Context, owner string, in DishInput) (*domain.Dish, error) {
	verr := e.check(in)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		verr.add("name", "is required")
	}
	if in.CookingTime != nil && *in.CookingTime < 1 {
		verr.add("cookingTime", "must be at least 1")
	}
	if in.Temperature != nil && *in.Temperature <= 0 && in.Appliance != domain.ApplianceMicrowave {
		verr.add("temperature", "must be greater than 0")
	}
	if in.CookingTime != nil {
		checkOffsets(verr, in.Instructions, *in.CookingTime)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	dish := &domain.Dish{
		ID:           generateID(),
		Owner:        owner,
		Name:         in.Name,
		Unit:         in.Unit,
		Appliance:    in.Appliance,
		OvenType:     in.OvenType,
		CookingTime:  *in.CookingTime,
		Instructions: toInstructions(in.Instructions),
		CreatedAt:    e.now(),
	}
	if in.Temperature != nil {
		dish.Temperature = *in.Temperature
	}
	if dish.Unit == "" {
		dish.Unit = domain.Celsius
	}
	if dish.Appliance == "" {
		dish.Appliance = domain.ApplianceOven
	}
	if dish.Appliance == domain.ApplianceOven && dish.OvenType == "" {
		dish.OvenType = domain.OvenFan
	}
	if dish.Appliance != domain.ApplianceOven {
		dish.OvenType = ""
	}

	if err := e.dishes.SaveDish(ctx, dish); err != nil {
		return nil, fmt.Errorf("saving dish: %w", err)
	}
	e.log.Info("added dish %q (%s) for %s", dish.Name, dish.ID, owner)
	return dish, nil
}

// UpdateDishTime changes a dish's declared cooking time.
func (e *Engine) UpdateDishTime(ctx context.Context, owner, id string, minutes int) (*domain.Dish, error) {
	if minutes < 1 {
		verr := &ValidationError{}
		verr.add("cookingTime", "must be at least 1")
		return nil, verr
	}

	dish, err := e.dishes.GetDish(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("loading dish: %w", err)
	}
	dish.CookingTime = minutes
	if err := e.dishes.SaveDish(ctx, dish); err != nil {
		return nil, fmt.Errorf("saving dish: %w", err)
	}
	e.log.Debug("dish %s cooking time set to %d", id, minutes)
	return dish, nil
}

// RemoveDish deletes a dish.
func (e *Engine) RemoveDish(ctx context.Context, owner, id string) error {
	if err := e.dishes.DeleteDish(ctx, owner, id); err != nil {
		return fmt.Errorf("deleting dish: %w", err)
	}
	e.log.Info("removed dish %s for %s", id, owner)
	return nil
}

// ClearDishes deletes all the owner's dishes.
func (e *Engine) ClearDishes(ctx context.Context, owner string) (int, error) {
	n, err := e.dishes.ClearDishes(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clearing dishes: %w", err)
	}
	e.log.Info("cleared %d dishes for %s", n, owner)
	return n, nil
}

// ListTasks returns the owner's tasks.
func (e *Engine) ListTasks(ctx context.Context, owner string) ([]*domain.Task, error) {
	return e.tasks.ListTasks(ctx, owner)
}

// AddTask validates the input and stores a new task.
func (e *Engine) AddTask(ctx context.Context, owner string, in TaskInput) (*domain.Task, error) {
	verr := e.check(in)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		verr.add("name", "is required")
	}

	kind := in.Kind
	if kind == "" {
		kind = domain.TaskDuration
	}
	task := &domain.Task{
		ID:           generateID(),
		Owner:        owner,
		Name:         in.Name,
		Kind:         kind,
		Instructions: toInstructions(in.Instructions),
		CreatedAt:    e.now(),
	}

	switch kind {
	case domain.TaskTrigger:
		if in.TriggerAt == nil {
			verr.add("triggerAt", "is required")
		} else if *in.TriggerAt < 0 {
			verr.add("triggerAt", "must be at least 0")
		} else {
			task.TriggerAt = *in.TriggerAt
		}
	default:
		if in.Duration == nil {
			verr.add("duration", "is required")
		} else if *in.Duration < 1 {
			verr.add("duration", "must be at least 1")
		} else {
			task.Duration = *in.Duration
			checkOffsets(verr, in.Instructions, task.Duration)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := e.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	e.log.Info("added %s task %q (%s) for %s", task.Kind, task.Name, task.ID, owner)
	return task, nil
}

// UpdateTaskTime changes a task's duration, or its trigger offset for
// trigger tasks.
func (e *Engine) UpdateTaskTime(ctx context.Context, owner, id string, minutes int) (*domain.Task, error) {
	task, err := e.tasks.GetTask(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}

	verr := &ValidationError{}
	if task.Kind == domain.TaskTrigger {
		if minutes < 0 {
			verr.add("minutes", "must be at least 0")
			return nil, verr
		}
		task.TriggerAt = minutes
	} else {
		if minutes < 1 {
			verr.add("minutes", "must be at least 1")
			return nil, verr
		}
		task.Duration = minutes
	}

	if err := e.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// RemoveTask deletes a task.
func (e *Engine) RemoveTask(ctx context.Context, owner, id string) error {
	if err := e.tasks.DeleteTask(ctx, owner, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// ClearTasks deletes all the owner's tasks.
func (e *Engine) ClearTasks(ctx context.Context, owner string) (int, error) {
	n, err := e.tasks.ClearTasks(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clearing tasks: %w", err)
	}
	return n, nil
}

// CalculatePlan builds the plan for everything the owner has entered.
// Returns domain.ErrNoDishes when there is nothing to plan.
func (e *Engine) CalculatePlan(ctx context.Context, owner string, appliance domain.ApplianceType) (*domain.Plan, error) {
	dishes, err := e.dishes.ListDishes(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing dishes: %w", err)
	}
	tasks, err := e.tasks.ListTasks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if len(dishes) == 0 && len(tasks) == 0 {
		return nil, domain.ErrNoDishes
	}

	p := e.builder.Build(dishes, tasks, appliance)
	e.log.Info("plan for %s: %d items, %d°C (%s), %d min",
		owner, len(p.Timeline), p.ApplianceTemp, p.Appliance, p.TotalTime)
	return p, nil
}

// checkOffsets rejects instructions that would fire after the dish is done.
func checkOffsets(verr *ValidationError, ins []InstructionInput, cookTime int) {
	for i, in := range ins {
		if in.AfterMinutes > cookTime {
			verr.add(fmt.Sprintf("instructions[%d].afterMinutes", i),
				fmt.Sprintf("must not exceed the cooking time (%d)", cookTime))
		}
	}
}

func toInstructions(ins []InstructionInput) []domain.Instruction {
	out := make([]domain.Instruction, 0, len(ins))
	for _, in := range ins {
		out = append(out, domain.Instruction{Label: strings.TrimSpace(in.Label), AfterMinutes: in.AfterMinutes})
	}
	return out
}
