package tasklist

import (
	"cmp"
	"context"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/hooks"
	"github.com/nibzard/taskpad/internal/todo"
)

// Store persists tasks. *todo.Store implements it.
type Store interface {
	ListAll(ctx context.Context) []todo.Task
	Save(ctx context.Context, t todo.Task) error
	Remove(ctx context.Context, id int64) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHook runs command after every persisted change.
func WithHook(command, workDir string) Option {
	return func(c *Controller) {
		c.hookCommand = strings.TrimSpace(command)
		c.hookWorkDir = workDir
	}
}

// WithIDGenerator replaces the default id generator.
func WithIDGenerator(ids *todo.IDGenerator) Option {
	return func(c *Controller) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithClock sets the time source for DateCreated.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithView sets the initial view.
func WithView(v View) Option {
	return func(c *Controller) {
		c.view = v
	}
}

// Controller is the authoritative in-memory task list. It is safe for
// concurrent use; mutations are serialized.
type Controller struct {
	mu sync.Mutex

	store  Store
	ids    *todo.IDGenerator
	now    func() time.Time
	logger *log.Logger

	hookCommand string
	hookWorkDir string

	tasks   []todo.Task
	search  string
	view    View
	form    Form
	draft   Draft
	pending map[int64]pendingOp
}

// New returns an empty controller backed by store. Call Initialize to load.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		ids:     todo.NewIDGenerator(),
		now:     time.Now,
		logger:  log.New(io.Discard),
		view:    ViewPending,
		form:    Closed{},
		pending: make(map[int64]pendingOp),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "tasklist")
	return c
}

// Initialize retries failed writes, then replaces the list with the
// contents of storage. Tasks with a failed delete stay gone and tasks with
// a failed save keep their in-memory version.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reconcileLocked(ctx)

	loaded := c.store.ListAll(ctx)
	tasks := make([]todo.Task, 0, len(loaded))
	seen := make(map[int64]bool, len(loaded))
	for _, t := range loaded {
		switch op, ok := c.pending[t.ID]; {
		case ok && op == opDelete:
			continue
		case ok && op == opSave:
			if mem, found := c.find(t.ID); found {
				t = c.tasks[mem]
			}
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	for id, op := range c.pending {
		if op != opSave || seen[id] {
			continue
		}
		if i, found := c.find(id); found {
			tasks = append(tasks, c.tasks[i])
		}
	}
	slices.SortStableFunc(tasks, func(a, b todo.Task) int {
		return cmp.Compare(b.ID, a.ID)
	})

	for _, t := range tasks {
		c.ids.Observe(t.ID)
	}
	c.tasks = tasks

	if ed, ok := c.form.(Editing); ok {
		if _, found := c.find(ed.Target.ID); !found {
			c.closeFormLocked()
		}
	}
	c.logger.Debug("loaded tasks", "count", len(tasks), "pending", len(c.pending))
}

// Add creates a task and prepends it. The title is stored as given; a
// blank title is a no-op.
func (c *Controller) Add(ctx context.Context, title, description string) (todo.Task, bool) {
	if strings.TrimSpace(title) == "" {
		c.logger.Debug("ignored add with empty title")
		return todo.Task{}, false
	}

	c.mu.Lock()
	t := todo.Task{
		ID:          c.ids.Next(),
		Title:       title,
		Description: description,
		Completed:   false,
		DateCreated: todo.FormatTimestamp(c.now()),
	}
	err := c.persistLocked(ctx, t)
	c.tasks = slices.Insert(c.tasks, 0, t)
	if _, editing := c.form.(Editing); !editing {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	if err == nil {
		c.runHook(ctx, hooks.EventAdd, t)
	}
	return t, true
}

// Update stores target with a new title and description and a refreshed
// DateCreated, in the list slot of the task with target's id. The id and
// completion flag come from target. A blank title or a target that is no
// longer listed is a no-op.
func (c *Controller) Update(ctx context.Context, target todo.Task, title, description string) (todo.Task, bool) {
	if strings.TrimSpace(title) == "" || target.IsZero() {
		c.logger.Debug("ignored update", "id", target.ID)
		return todo.Task{}, false
	}

	c.mu.Lock()
	if _, found := c.find(target.ID); !found {
		c.mu.Unlock()
		c.logger.Debug("ignored update of unknown task", "id", target.ID)
		return todo.Task{}, false
	}
	t := target
	t.Title = title
	t.Description = description
	t.DateCreated = todo.FormatTimestamp(c.now())

	err := c.persistLocked(ctx, t)
	if i, found := c.find(t.ID); found {
		c.tasks[i] = t
	}
	if _, editing := c.form.(Editing); editing {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	if err == nil {
		c.runHook(ctx, hooks.EventUpdate, t)
	}
	return t, true
}

// Remove deletes the task from storage and from the list. The list entry
// goes away even if the storage delete fails.
func (c *Controller) Remove(ctx context.Context, id int64) bool {
	c.mu.Lock()
	i, found := c.find(id)
	if !found {
		c.mu.Unlock()
		return false
	}
	t := c.tasks[i]

	err := c.store.Remove(ctx, id)
	c.track(id, opDelete, err)
	if i, found := c.find(id); found {
		c.tasks = slices.Delete(c.tasks, i, i+1)
	}
	if ed, ok := c.form.(Editing); ok && ed.Target.ID == id {
		c.closeFormLocked()
	}
	c.mu.Unlock()

	if err == nil {
		c.runHook(ctx, hooks.EventRemove, t)
	}
	return true
}

// ToggleComplete flips the completion flag of the task with id.
func (c *Controller) ToggleComplete(ctx context.Context, id int64) (todo.Task, bool) {
	c.mu.Lock()
	i, found := c.find(id)
	if !found {
		c.mu.Unlock()
		return todo.Task{}, false
	}
	t := c.tasks[i]
	t.Completed = !t.Completed

	err := c.persistLocked(ctx, t)
	if i, found := c.find(id); found {
		c.tasks[i] = t
	}
	c.mu.Unlock()

	if err == nil {
		c.runHook(ctx, hooks.EventToggle, t)
	}
	return t, true
}

// FilteredView yields the tasks in view whose title or description
// contains search, ignoring case. Each iteration works on a fresh snapshot.
func (c *Controller) FilteredView(search string, view View) iter.Seq[todo.Task] {
	return func(yield func(todo.Task) bool) {
		for _, t := range c.Tasks() {
			if !view.Includes(t) || !t.Matches(search) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Visible is FilteredView over the current search term and view.
func (c *Controller) Visible() iter.Seq[todo.Task] {
	c.mu.Lock()
	search, view := c.search, c.view
	c.mu.Unlock()
	return c.FilteredView(search, view)
}

// OpenCreate opens the add form with an empty draft.
func (c *Controller) OpenCreate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, closed := c.form.(Closed); !closed {
		return false
	}
	c.form = Creating{}
	c.draft = Draft{}
	return true
}

// OpenEdit opens the edit form for id with the draft filled from the task.
func (c *Controller) OpenEdit(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, closed := c.form.(Closed); !closed {
		return false
	}
	i, found := c.find(id)
	if !found {
		return false
	}
	t := c.tasks[i]
	c.form = Editing{Target: t}
	c.draft = Draft{Title: t.Title, Description: t.Description}
	return true
}

// Cancel closes any open form and discards the draft.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormLocked()
}

// SetDraft replaces the form buffer.
func (c *Controller) SetDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{Title: title, Description: description}
}

// Submit adds or updates from the draft depending on the open form.
func (c *Controller) Submit(ctx context.Context) (todo.Task, bool) {
	c.mu.Lock()
	form, draft := c.form, c.draft
	c.mu.Unlock()

	switch f := form.(type) {
	case Creating:
		return c.Add(ctx, draft.Title, draft.Description)
	case Editing:
		return c.Update(ctx, f.Target, draft.Title, draft.Description)
	default:
		return todo.Task{}, false
	}
}

// SetSearch sets the search term used by Visible.
func (c *Controller) SetSearch(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = s
}

// Search returns the current search term.
func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetView sets the view used by Visible.
func (c *Controller) SetView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Form returns the current form state.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Draft returns the form buffer.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Tasks returns a copy of the list, newest first.
func (c *Controller) Tasks() []todo.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}

// Get returns the task with id.
func (c *Controller) Get(id int64) (todo.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, found := c.find(id); found {
		return c.tasks[i], true
	}
	return todo.Task{}, false
}

// Counts returns the number of pending and completed tasks.
func (c *Controller) Counts() (pending, completed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}

// Pending returns the number of writes waiting for Reconcile.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Reconcile retries failed writes against the current in-memory state and
// returns how many are still failing.
func (c *Controller) Reconcile(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconcileLocked(ctx)
}

func (c *Controller) reconcileLocked(ctx context.Context) int {
	if len(c.pending) == 0 {
		return 0
	}

	ids := make([]int64, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		switch c.pending[id] {
		case opDelete:
			c.track(id, opDelete, c.store.Remove(ctx, id))
		case opSave:
			i, found := c.find(id)
			if !found {
				delete(c.pending, id)
				continue
			}
			c.track(id, opSave, c.store.Save(ctx, c.tasks[i]))
		}
	}

	if n := len(c.pending); n > 0 {
		c.logger.Warn("writes still pending", "count", n)
	} else {
		c.logger.Info("reconciled pending writes", "count", len(ids))
	}
	return len(c.pending)
}

func (c *Controller) persistLocked(ctx context.Context, t todo.Task) error {
	err := c.store.Save(ctx, t)
	c.track(t.ID, opSave, err)
	return err
}

// track records the outcome of a write for id.
func (c *Controller) track(id int64, op pendingOp, err error) {
	if err != nil {
		c.pending[id] = op
		c.logger.Warn("write failed, will retry", "id", id, "op", op, "err", err)
		return
	}
	delete(c.pending, id)
}

func (c *Controller) find(id int64) (int, bool) {
	for i, t := range c.tasks {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (c *Controller) closeFormLocked() {
	c.form = Closed{}
	c.draft = Draft{}
}

func (c *Controller) runHook(ctx context.Context, event string, t todo.Task) {
	if c.hookCommand == "" {
		return
	}
	payload, err := todo.Marshal(t)
	if err != nil {
		c.logger.Warn("hook payload", "err", err)
		return
	}

	result, err := hooks.Invoke(ctx, hooks.Options{
		Command: c.hookCommand,
		Event:   event,
		TaskID:  t.ID,
		Key:     todo.Key(t.ID),
		Payload: payload,
		WorkDir: c.hookWorkDir,
	})
	if err != nil {
		c.logger.Warn("hook failed", "event", event, "id", t.ID, "exit_code", result.ExitCode, "output", result.Output, "err", err)
		return
	}
	if result.Ran {
		c.logger.Debug("hook ran", "event", event, "id", t.ID, "output", result.Output)
	}
}
