package tasklist

import (
	"fmt"

	"github.com/nibzard/taskpad/internal/todo"
	"github.com/nibzard/taskpad/internal/utils"
)

// View selects which tasks are listed.
type View string

const (
	ViewPending   View = "pending"
	ViewCompleted View = "completed"
)

// ParseView converts a view name. The empty string means ViewPending.
func ParseView(s string) (View, error) {
	switch utils.Normalize(s) {
	case "", "pending", "todo", "todos":
		return ViewPending, nil
	case "completed", "done":
		return ViewCompleted, nil
	default:
		return "", fmt.Errorf("unknown view %q (expected pending|completed)", s)
	}
}

// Includes reports whether t belongs in the view.
func (v View) Includes(t todo.Task) bool {
	return t.Completed == (v == ViewCompleted)
}

// Form is the state of the create/edit form.
type Form interface {
	isForm()
}

// Closed means no form is open.
type Closed struct{}

// Creating is the add form.
type Creating struct{}

// Editing is the edit form for Target.
type Editing struct {
	Target todo.Task
}

func (Closed) isForm()   {}
func (Creating) isForm() {}
func (Editing) isForm()  {}

// Draft is the form buffer.
type Draft struct {
	Title       string
	Description string
}

type pendingOp int

const (
	opSave pendingOp = iota
	opDelete
)

func (op pendingOp) String() string {
	if op == opDelete {
		return "delete"
	}
	return "save"
}
