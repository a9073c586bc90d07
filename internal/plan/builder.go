// Package plan computes the cooking plan: a common oven temperature,
// rescaled cooking times, and the ordered timeline of start offsets that
// makes every dish finish at the same moment.
package plan

import (
	"sort"
	"strconv"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/normalize"
)

const (
	// DefaultTemp is shown when the plan has no oven dishes.
	DefaultTemp = 180
	// Sensitivity converts a fractional temperature change into a
	// fractional time change.
	Sensitivity = -1.5
)

// Option configures the builder.
type Option func(*Builder)

// WithDefaultTemp sets the temperature used when there is nothing in the oven.
func WithDefaultTemp(c int) Option {
	return func(b *Builder) {
		b.defaultTemp = c
	}
}

// Builder turns dishes and tasks into a plan. It holds no state between
// calls and is safe for concurrent use.
type Builder struct {
	defaultTemp int
}

// New creates a plan builder with the given options.
func New(opts ...Option) *Builder {
	b := &Builder{defaultTemp: DefaultTemp}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type scheduled struct {
	id           string
	name         string
	kind         domain.ItemKind
	original     int
	adjusted     int
	instructions []domain.Instruction
	trigger      bool
	triggerAt    int
}

// Build computes the plan for the given dishes and tasks, cooked with the
// user's appliance. The inputs are not modified.
func (b *Builder) Build(dishes []*domain.Dish, tasks []*domain.Task, appliance domain.ApplianceType) *domain.Plan {
	target := b.targetTemp(dishes)

	var items []scheduled
	for _, d := range dishes {
		items = append(items, scheduled{
			id:           d.ID,
			name:         d.Name,
			kind:         domain.ItemDish,
			original:     d.CookingTime,
			adjusted:     adjustDish(d, target, appliance),
			instructions: d.Instructions,
		})
	}
	// Longest first so that, among equal start delays, the dish holding
	// the oven longest is listed first.
	sort.SliceStable(items, func(i, j int) bool { return items[i].adjusted > items[j].adjusted })

	for _, t := range tasks {
		s := scheduled{
			id:           t.ID,
			name:         t.Name,
			kind:         domain.ItemTask,
			instructions: t.Instructions,
		}
		if t.Kind == domain.TaskTrigger {
			s.trigger = true
			s.triggerAt = max(t.TriggerAt, 0)
			s.original = t.TriggerAt
		} else {
			s.original = t.Duration
			s.adjusted = max(t.Duration, 0)
		}
		items = append(items, s)
	}

	// Triggers never extend the plan; late ones fire at the finish. A plan
	// of triggers alone runs until the last one fires.
	total, lastTrigger := 0, 0
	for _, s := range items {
		if s.trigger {
			lastTrigger = max(lastTrigger, s.triggerAt)
			continue
		}
		total = max(total, s.adjusted)
	}
	if total == 0 {
		total = lastTrigger
	}

	var timeline []domain.TimelineItem
	for _, s := range items {
		parent := domain.TimelineItem{
			ID:           s.id,
			Kind:         s.kind,
			Name:         s.name,
			OriginalTime: s.original,
			AdjustedTime: s.adjusted,
			StartDelay:   total - s.adjusted,
			FinishTime:   total,
		}
		if s.trigger {
			parent.StartDelay = min(s.triggerAt, total)
			parent.FinishTime = parent.StartDelay
		}
		timeline = append(timeline, parent)

		for i, in := range s.instructions {
			timeline = append(timeline, instructionItem(parent, i, in))
		}
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].StartDelay < timeline[j].StartDelay
	})
	step := -1
	for i := range timeline {
		if i == 0 || timeline[i].StartDelay != timeline[i-1].StartDelay {
			step++
		}
		timeline[i].Order = i + 1
		timeline[i].Step = step
	}

	return &domain.Plan{
		TargetTemp:    target,
		ApplianceTemp: normalize.FromBaseline(target, appliance),
		Appliance:     appliance,
		TotalTime:     total,
		Timeline:      timeline,
		Steps:         Steps(timeline),
	}
}

// targetTemp is the rounded mean of the normalised oven temperatures,
// rounded again to the nearest 10°C.
func (b *Builder) targetTemp(dishes []*domain.Dish) int {
	var sum float64
	n := 0
	for _, d := range dishes {
		if !d.InOven() {
			continue
		}
		sum += normalize.Normalize(d.Temperature, d.Unit, d.OvenType)
		n++
	}
	if n == 0 {
		return b.defaultTemp
	}
	avg := normalize.Round(sum / float64(n))
	return normalize.RoundToTen(float64(avg))
}

// adjustDish rescales an oven dish's time to the target temperature.
// Dishes in their own appliance keep their declared time.
func adjustDish(d *domain.Dish, target int, appliance domain.ApplianceType) int {
	if !d.InOven() {
		return d.CookingTime
	}
	norm := normalize.Normalize(d.Temperature, d.Unit, d.OvenType)
	adjusted := AdjustTime(d.CookingTime, norm, float64(target))
	if appliance == domain.UserAirFryer {
		_, adjusted = normalize.AirFryer(float64(target), adjusted)
	}
	return max(adjusted, 1)
}

// AdjustTime rescales a cooking time for a temperature change: the
// fractional temperature change times Sensitivity is the fractional time
// change. Equal temperatures leave the time untouched.
func AdjustTime(minutes int, from, to float64) int {
	if from == to || from == 0 {
		return minutes
	}
	tempPct := (to - from) / from
	timePct := tempPct * Sensitivity
	return max(normalize.Round(float64(minutes)*(1+timePct)), 1)
}

// instructionItem projects an instruction relative to its parent. Offsets
// past the parent's cook time fire at the parent's finish with nothing
// left to count down.
func instructionItem(parent domain.TimelineItem, idx int, in domain.Instruction) domain.TimelineItem {
	offset := min(max(in.AfterMinutes, 0), parent.AdjustedTime)
	return domain.TimelineItem{
		ID:           parent.ID + "_instruction_" + strconv.Itoa(idx),
		Kind:         domain.ItemInstruction,
		Name:         in.Label,
		ParentID:     parent.ID,
		OriginalTime: in.AfterMinutes,
		AdjustedTime: parent.AdjustedTime - offset,
		StartDelay:   parent.StartDelay + offset,
		FinishTime:   parent.FinishTime,
	}
}

// Steps groups an ordered timeline into runs of equal start delay.
func Steps(timeline []domain.TimelineItem) []domain.Step {
	var steps []domain.Step
	for _, it := range timeline {
		if n := len(steps); n > 0 && steps[n-1].StartDelay == it.StartDelay {
			steps[n-1].Items = append(steps[n-1].Items, it)
			continue
		}
		steps = append(steps, domain.Step{
			Index:      len(steps),
			StartDelay: it.StartDelay,
			Items:      []domain.TimelineItem{it},
		})
	}
	return steps
}
