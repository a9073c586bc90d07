package domain

// ItemKind tags what a timeline item was projected from.
type ItemKind string

const (
	ItemDish        ItemKind = "dish"
	ItemTask        ItemKind = "task"
	ItemInstruction ItemKind = "instruction"
)

// TimelineItem is a computed projection of a dish, task or instruction.
// All times are whole minutes from the start of the plan.
type TimelineItem struct {
	ID           string   `json:"id"`
	Kind         ItemKind `json:"type"`
	Name         string   `json:"name"`
	ParentID     string   `json:"parentId,omitempty"`
	OriginalTime int      `json:"originalTimeMinutes"`
	AdjustedTime int      `json:"adjustedTimeMinutes"`
	StartDelay   int      `json:"startDelayMinutes"`
	FinishTime   int      `json:"finishTimeMinutes"`
	Order        int      `json:"order"`
	Step         int      `json:"step"`
}

// Step groups the items that start together.
type Step struct {
	Index      int
	StartDelay int
	Items      []TimelineItem
}

// Plan is the result of a plan calculation.
type Plan struct {
	// TargetTemp is the common Fan-equivalent temperature in Celsius.
	TargetTemp int
	// ApplianceTemp is TargetTemp converted for the user's appliance, i.e.
	// what to actually set the dial to.
	ApplianceTemp int
	Appliance     ApplianceType
	TotalTime     int
	Timeline      []TimelineItem
	Steps         []Step
}

// Empty reports whether the plan has nothing to run.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Timeline) == 0
}
