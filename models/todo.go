package models

import "time"

// StatusNew is the status of every freshly created todo.
const StatusNew = "New"

// Todo is a single to-do item. JSON keys keep the public wire format of the API.
type Todo struct {
	ID          string    `json:"_id" bson:"-"`
	UserName    string    `json:"UserName" bson:"UserName"`
	Subject     string    `json:"ToDoSubject" bson:"ToDoSubject"`
	Description string    `json:"ToDoDescription" bson:"ToDoDescription"`
	Status      string    `json:"ToDoStatus" bson:"ToDoStatus"`
	CreatedAt   time.Time `json:"ToDoCreateDate" bson:"ToDoCreateDate"`
	UpdatedAt   time.Time `json:"ToDoUpdateDate" bson:"ToDoUpdateDate"`
}

// TodoFilter selects todos. Empty fields do not constrain the result.
type TodoFilter struct {
	UserName    string
	Status      string
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// Match reports whether t passes the filter. Date bounds are inclusive.
func (f TodoFilter) Match(t Todo) bool {
	if f.UserName != "" && t.UserName != f.UserName {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.CreatedFrom.IsZero() && t.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && t.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}

// TodoUpdate is the $set part of a todo update. Nil fields are not written.
type TodoUpdate struct {
	Subject     *string    `json:"ToDoSubject,omitempty"`
	Description *string    `json:"ToDoDescription,omitempty"`
	Status      *string    `json:"ToDoStatus,omitempty"`
	UpdatedAt   *time.Time `json:"ToDoUpdateDate,omitempty"`
}

// UpdateResult mirrors the counters a document store reports for updateOne.
type UpdateResult struct {
	Matched  int64
	Modified int64
	Upserted int64
}
