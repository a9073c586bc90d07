package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
	"github.com/hammamikhairi/cooksync/internal/storage"
)

const owner = "cook@example.com"

func setupEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	tick := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return New(store, store, log, WithClock(clock)), context.Background()
}

func ptr[T any](v T) *T { return &v }

func TestAddDish(t *testing.T) {
	eng, ctx := setupEngine(t)

	tests := []struct {
		name      string
		in        DishInput
		wantErr   bool
		wantField string
	}{
		{
			name: "valid oven dish",
			in:   DishInput{Name: "Roast Chicken", Temperature: ptr(200.0), CookingTime: ptr(60)},
		},
		{
			name: "microwave needs no temperature",
			in:   DishInput{Name: "Peas", Appliance: domain.ApplianceMicrowave, CookingTime: ptr(3)},
		},
		{
			name:      "missing name",
			in:        DishInput{Name: "  ", Temperature: ptr(200.0), CookingTime: ptr(20)},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "missing temperature",
			in:        DishInput{Name: "Bread", CookingTime: ptr(30)},
			wantErr:   true,
			wantField: "temperature",
		},
		{
			name:      "missing cooking time",
			in:        DishInput{Name: "Bread", Temperature: ptr(220.0)},
			wantErr:   true,
			wantField: "cookingTime",
		},
		{
			name:      "zero cooking time",
			in:        DishInput{Name: "Bread", Temperature: ptr(220.0), CookingTime: ptr(0)},
			wantErr:   true,
			wantField: "cookingTime",
		},
		{
			name:      "unknown appliance",
			in:        DishInput{Name: "Toast", Temperature: ptr(200.0), Appliance: "Toaster", CookingTime: ptr(2)},
			wantErr:   true,
			wantField: "appliance",
		},
		{
			name: "instruction after the end",
			in: DishInput{
				Name: "Wedges", Temperature: ptr(200.0), CookingTime: ptr(15),
				Instructions: []InstructionInput{{Label: "Flip", AfterMinutes: 20}},
			},
			wantErr:   true,
			wantField: "instructions[0].afterMinutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dish, err := eng.AddDish(ctx, owner, tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected a ValidationError, got %T", err)
				}
				if _, ok := verr.Fields[tt.wantField]; !ok {
					t.Fatalf("expected field %q in %v", tt.wantField, verr.Fields)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dish.ID == "" {
				t.Fatal("dish ID is empty")
			}
			if dish.Unit != domain.Celsius {
				t.Fatalf("expected default unit C, got %s", dish.Unit)
			}
		})
	}

	dishes, err := eng.ListDishes(ctx, owner)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(dishes) != 2 {
		t.Fatalf("only valid dishes should be stored, got %d", len(dishes))
	}
}

func TestAddDishDefaults(t *testing.T) {
	eng, ctx := setupEngine(t)

	oven, err := eng.AddDish(ctx, owner, DishInput{Name: "Pie", Temperature: ptr(190.0), CookingTime: ptr(40)})
	if err != nil {
		t.Fatalf("adding pie: %v", err)
	}
	if oven.Appliance != domain.ApplianceOven || oven.OvenType != domain.OvenFan {
		t.Fatalf("expected fan oven defaults, got %s/%s", oven.Appliance, oven.OvenType)
	}

	fryer, err := eng.AddDish(ctx, owner, DishInput{
		Name: "Fries", Temperature: ptr(200.0), Appliance: domain.ApplianceAirFryer,
		OvenType: domain.OvenGas, CookingTime: ptr(12),
	})
	if err != nil {
		t.Fatalf("adding fries: %v", err)
	}
	if fryer.OvenType != "" {
		t.Fatalf("oven type only applies to ovens, got %s", fryer.OvenType)
	}
}

func TestUpdateDishTime(t *testing.T) {
	eng, ctx := setupEngine(t)

	dish, err := eng.AddDish(ctx, owner, DishInput{Name: "Lasagne", Temperature: ptr(180.0), CookingTime: ptr(45)})
	if err != nil {
		t.Fatalf("adding: %v", err)
	}

	updated, err := eng.UpdateDishTime(ctx, owner, dish.ID, 50)
	if err != nil {
		t.Fatalf("updating: %v", err)
	}
	if updated.CookingTime != 50 {
		t.Fatalf("expected 50, got %d", updated.CookingTime)
	}

	if _, err := eng.UpdateDishTime(ctx, owner, dish.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 0 minutes, got %v", err)
	}
	if _, err := eng.UpdateDishTime(ctx, owner, "missing", 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := eng.UpdateDishTime(ctx, "someone-else", dish.ID, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("dishes must be scoped to their owner, got %v", err)
	}
}

func TestRemoveAndClearDishes(t *testing.T) {
	eng, ctx := setupEngine(t)

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		d, err := eng.AddDish(ctx, owner, DishInput{Name: name, Temperature: ptr(200.0), CookingTime: ptr(10)})
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		ids = append(ids, d.ID)
	}

	if err := eng.RemoveDish(ctx, owner, ids[0]); err != nil {
		t.Fatalf("removing: %v", err)
	}
	if err := eng.RemoveDish(ctx, owner, ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second remove should be ErrNotFound, got %v", err)
	}

	n, err := eng.ClearDishes(ctx, owner)
	if err != nil {
		t.Fatalf("clearing: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	if n, _ := eng.ClearDishes(ctx, owner); n != 0 {
		t.Fatalf("clearing an empty kitchen should report 0, got %d", n)
	}
}

func TestAddTask(t *testing.T) {
	eng, ctx := setupEngine(t)

	tests := []struct {
		name    string
		in      TaskInput
		wantErr bool
	}{
		{"duration task", TaskInput{Name: "Rice", Duration: ptr(18)}, false},
		{"trigger task", TaskInput{Name: "Warm plates", Kind: domain.TaskTrigger, TriggerAt: ptr(10)}, false},
		{"trigger at zero", TaskInput{Name: "Preheat", Kind: domain.TaskTrigger, TriggerAt: ptr(0)}, false},
		{"duration missing", TaskInput{Name: "Rice"}, true},
		{"trigger missing", TaskInput{Name: "Plates", Kind: domain.TaskTrigger}, true},
		{"negative trigger", TaskInput{Name: "Plates", Kind: domain.TaskTrigger, TriggerAt: ptr(-1)}, true},
		{"unknown kind", TaskInput{Name: "Odd", Kind: "whenever", Duration: ptr(5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := eng.AddTask(ctx, owner, tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.Kind == "" {
				t.Fatal("task kind should default")
			}
		})
	}
}

func TestUpdateTaskTime(t *testing.T) {
	eng, ctx := setupEngine(t)

	rice, _ := eng.AddTask(ctx, owner, TaskInput{Name: "Rice", Duration: ptr(18)})
	plates, _ := eng.AddTask(ctx, owner, TaskInput{Name: "Plates", Kind: domain.TaskTrigger, TriggerAt: ptr(10)})

	got, err := eng.UpdateTaskTime(ctx, owner, rice.ID, 20)
	if err != nil || got.Duration != 20 {
		t.Fatalf("expected duration 20, got %+v (%v)", got, err)
	}
	got, err = eng.UpdateTaskTime(ctx, owner, plates.ID, 0)
	if err != nil || got.TriggerAt != 0 {
		t.Fatalf("expected trigger 0, got %+v (%v)", got, err)
	}
	if _, err := eng.UpdateTaskTime(ctx, owner, rice.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculatePlan(t *testing.T) {
	eng, ctx := setupEngine(t)

	if _, err := eng.CalculatePlan(ctx, owner, domain.UserFan); !errors.Is(err, domain.ErrNoDishes) {
		t.Fatalf("expected ErrNoDishes on an empty kitchen, got %v", err)
	}

	if _, err := eng.AddDish(ctx, owner, DishInput{Name: "A", Temperature: ptr(200.0), CookingTime: ptr(15)}); err != nil {
		t.Fatalf("adding A: %v", err)
	}
	if _, err := eng.AddDish(ctx, owner, DishInput{
		Name: "B", Temperature: ptr(220.0), OvenType: domain.OvenElectric, CookingTime: ptr(35),
	}); err != nil {
		t.Fatalf("adding B: %v", err)
	}

	p, err := eng.CalculatePlan(ctx, owner, domain.UserFan)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	if p.TargetTemp != 200 || p.TotalTime != 35 {
		t.Fatalf("expected 200°C for 35 min, got %d°C for %d min", p.TargetTemp, p.TotalTime)
	}
	if p.Timeline[0].Name != "B" || p.Timeline[1].StartDelay != 20 {
		t.Fatalf("unexpected timeline: %+v", p.Timeline)
	}
}

func TestCalculatePlanTasksOnly(t *testing.T) {
	eng, ctx := setupEngine(t)

	if _, err := eng.AddTask(ctx, owner, TaskInput{Name: "Rice", Duration: ptr(18)}); err != nil {
		t.Fatalf("adding task: %v", err)
	}
	p, err := eng.CalculatePlan(ctx, owner, domain.UserGas)
	if err != nil {
		t.Fatalf("tasks alone should plan, got %v", err)
	}
	if p.TotalTime != 18 {
		t.Fatalf("expected total 18, got %d", p.TotalTime)
	}
}
