package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentListDishes
	IntentPlan
	IntentSetAppliance
	IntentStart
	IntentAcknowledge
	IntentAdvance
	IntentStop
	IntentReset
	IntentStatus
	IntentEditTime
	IntentRemove
	IntentClear
	IntentAddDish
	IntentAddTask
	IntentEditTask
	IntentRemoveTask
	IntentWhoAmI
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentListDishes:
		return "list_dishes"
	case IntentPlan:
		return "plan"
	case IntentSetAppliance:
		return "set_appliance"
	case IntentStart:
		return "start"
	case IntentAcknowledge:
		return "acknowledge"
	case IntentAdvance:
		return "advance"
	case IntentStop:
		return "stop"
	case IntentReset:
		return "reset"
	case IntentStatus:
		return "status"
	case IntentEditTime:
		return "edit_time"
	case IntentRemove:
		return "remove"
	case IntentClear:
		return "clear"
	case IntentAddDish:
		return "add_dish"
	case IntentAddTask:
		return "add_task"
	case IntentEditTask:
		return "edit_task"
	case IntentRemoveTask:
		return "remove_task"
	case IntentWhoAmI:
		return "whoami"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type IntentType
	// Args holds positional arguments, e.g. the dish number and minutes
	// for an edit.
	Args []string
}
