package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

// demoDishes is a small dinner that exercises all three oven types.
var demoDishes = []domain.Dish{
	{
		ID: "demo-roast-potatoes", Name: "Roast Potatoes",
		Temperature: 220, Unit: domain.Celsius, Appliance: domain.ApplianceOven, OvenType: domain.OvenElectric,
		CookingTime:  35,
		Instructions: []domain.Instruction{{Label: "Shake the potatoes", AfterMinutes: 20}},
	},
	{
		ID: "demo-salmon-fillet", Name: "Salmon Fillet",
		Temperature: 200, Unit: domain.Celsius, Appliance: domain.ApplianceOven, OvenType: domain.OvenFan,
		CookingTime: 15,
	},
	{
		ID: "demo-roasted-carrots", Name: "Roasted Carrots",
		Temperature: 180, Unit: domain.Celsius, Appliance: domain.ApplianceOven, OvenType: domain.OvenGas,
		CookingTime: 25,
	},
}

// Seed stores the demo dishes for owner unless the owner already has dishes.
// Returns the number of dishes written.
func Seed(ctx context.Context, store domain.DishStore, owner string) (int, error) {
	existing, err := store.ListDishes(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("checking existing dishes: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	base := time.Now()
	for i := range demoDishes {
		d := demoDishes[i]
		d.Owner = owner
		d.Instructions = append([]domain.Instruction(nil), d.Instructions...)
		d.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := store.SaveDish(ctx, &d); err != nil {
			return i, fmt.Errorf("seeding %s: %w", d.Name, err)
		}
	}
	return len(demoDishes), nil
}
