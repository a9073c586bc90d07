package domain

import "context"

// DishStore persists dishes per owner. Implementations can be in-memory,
// BadgerDB, or any other backend.
type DishStore interface {
	ListDishes(ctx context.Context, owner string) ([]*Dish, error)
	GetDish(ctx context.Context, owner, id string) (*Dish, error)
	SaveDish(ctx context.Context, dish *Dish) error
	DeleteDish(ctx context.Context, owner, id string) error
	ClearDishes(ctx context.Context, owner string) (int, error)
}

// TaskStore persists tasks per owner.
type TaskStore interface {
	ListTasks(ctx context.Context, owner string) ([]*Task, error)
	GetTask(ctx context.Context, owner, id string) (*Task, error)
	SaveTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, owner, id string) error
	ClearTasks(ctx context.Context, owner string) (int, error)
}

// UserStore persists signed-in accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	SaveUser(ctx context.Context, user *User) error
}

// Store bundles every persistence port.
type Store interface {
	DishStore
	TaskStore
	UserStore
	Close() error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout, push notifications, or anything else that reaches the cook.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// AlarmPlayer plays the audible step alarm. Start while already playing
// is a no-op; Stop while silent is a no-op.
type AlarmPlayer interface {
	Start()
	Stop()
	Playing() bool
}
