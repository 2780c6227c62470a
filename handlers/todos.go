package handlers

import (
	"time"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "2006-01-02"

	msgNoTodos       = "No to-do items found for this user"
	msgNoTodoChanged = "No to-do items found for this user or no changes made"
	msgNoTodoRemoved = "No to-do item found with this id"
)

// TodoHandler serves the to-do endpoints. Every request makes exactly one store call.
type TodoHandler struct {
	store  database.TodoStore
	events events.Publisher
	log    logrus.FieldLogger
	now    func() time.Time
	loc    *time.Location
}

func NewTodoHandler(store database.TodoStore, publisher events.Publisher, log logrus.FieldLogger) *TodoHandler {
	return &TodoHandler{
		store:  store,
		events: publisher,
		log:    log,
		now:    func() time.Time { return time.Now().Truncate(time.Millisecond) },
		loc:    time.Local,
	}
}

// CreateTodo adds a todo owned by the user in the userName header
//
//	@Summary	Create a todo
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.CreateTodoRequest	true	"todo"
//	@Success	200		{object}	models.Response
//	@Failure	400		{object}	models.Response
//	@Router		/CreateTodo [post]
func (h *TodoHandler) CreateTodo(c *fiber.Ctx) error {
	var req models.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return failData(c, fiber.StatusBadRequest, err.Error())
	}

	now := h.now()
	todo := models.Todo{
		UserName:    c.Get("userName"),
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateTodo(c.UserContext(), &todo); err != nil {
		h.log.WithError(err).WithField("userName", todo.UserName).Error("create todo failed")
		return failData(c, fiber.StatusBadRequest, err.Error())
	}

	h.publish(c, events.TodoCreated, todo.ID, todo.Status)
	return success(c, todo)
}

// SelectToDo lists the caller's todos
//
//	@Summary	List own todos
//	@Tags		todo
//	@Produce	json
//	@Security	TokenKey
//	@Success	200	{object}	models.Response
//	@Failure	404	{object}	models.Response
//	@Router		/SelectToDo [get]
func (h *TodoHandler) SelectToDo(c *fiber.Ctx) error {
	return h.list(c, models.TodoFilter{UserName: middleware.UserName(c)})
}

// UpdateToDo rewrites subject and description
//
//	@Summary	Update a todo
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.UpdateTodoRequest	true	"changes"
//	@Success	200		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/UpdateToDo [post]
func (h *TodoHandler) UpdateToDo(c *fiber.Ctx) error {
	var req models.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}

	now := h.now()
	set := models.TodoUpdate{
		Subject:     &req.Subject,
		Description: &req.Description,
		UpdatedAt:   &now,
	}
	return h.update(c, req.ID, set, false, events.TodoUpdated)
}

// UpdateToDoStatus sets the status of a todo
//
//	@Summary	Change todo status
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.UpdateTodoStatusRequest	true	"status"
//	@Success	200		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/UpdateToDoStatus [post]
func (h *TodoHandler) UpdateToDoStatus(c *fiber.Ctx) error {
	var req models.UpdateTodoStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}

	now := h.now()
	set := models.TodoUpdate{
		Status:    &req.Status,
		UpdatedAt: &now,
	}
	// An upserted todo is not "modified", so that case still answers 404.
	return h.update(c, req.ID, set, true, events.TodoStatusChanged)
}

// RemoveToDo deletes a todo by id
//
//	@Summary	Delete a todo
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.RemoveTodoRequest	true	"todo id"
//	@Success	200		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/RemoveToDo [post]
func (h *TodoHandler) RemoveToDo(c *fiber.Ctx) error {
	var req models.RemoveTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}

	deleted, err := h.store.DeleteTodo(c.UserContext(), req.ID)
	if err != nil {
		h.log.WithError(err).WithField("todoId", req.ID).Error("remove todo failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}
	if deleted == 0 {
		return failMessage(c, fiber.StatusNotFound, msgNoTodoRemoved)
	}

	h.publish(c, events.TodoRemoved, req.ID, "")
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status:  statusSuccess,
		Message: "To-do item removed",
	})
}

// FilterToDoByStatus lists a user's todos with the given status
//
//	@Summary	Filter todos by status
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.FilterByStatusRequest	true	"filter"
//	@Success	200		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/FilterToDoByStatus [post]
func (h *TodoHandler) FilterToDoByStatus(c *fiber.Ctx) error {
	var req models.FilterByStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return failMessage(c, fiber.StatusBadRequest, "ToDoStatus is required")
	}
	if req.UserName == "" {
		req.UserName = middleware.UserName(c)
	}

	return h.list(c, models.TodoFilter{UserName: req.UserName, Status: req.Status})
}

// FilterToDoByDate lists the todos of every user created on one local calendar day.
// The answer is a bare JSON array, not the usual envelope.
//
//	@Summary	Filter todos by creation date
//	@Tags		todo
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.FilterByDateRequest	true	"date as YYYY-MM-DD"
//	@Success	200		{array}		models.Todo
//	@Failure	400		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/FilterToDoByDate [post]
func (h *TodoHandler) FilterToDoByDate(c *fiber.Ctx) error {
	var req models.FilterByDateRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Date == "" {
		return failMessage(c, fiber.StatusBadRequest, "date is required")
	}

	start, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		return failMessage(c, fiber.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)

	todos, err := h.store.FindTodos(c.UserContext(), models.TodoFilter{CreatedFrom: start, CreatedTo: end})
	if err != nil {
		h.log.WithError(err).WithField("date", req.Date).Error("filter todos by date failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}
	if len(todos) == 0 {
		return failMessage(c, fiber.StatusNotFound, "No to-do items found for this date")
	}

	return c.Status(fiber.StatusOK).JSON(todos)
}

func (h *TodoHandler) list(c *fiber.Ctx, filter models.TodoFilter) error {
	todos, err := h.store.FindTodos(c.UserContext(), filter)
	if err != nil {
		h.log.WithError(err).WithField("userName", filter.UserName).Error("list todos failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}
	if len(todos) == 0 {
		return failMessage(c, fiber.StatusNotFound, msgNoTodos)
	}
	return success(c, todos)
}

func (h *TodoHandler) update(c *fiber.Ctx, id string, set models.TodoUpdate, upsert bool, kind events.Type) error {
	res, err := h.store.UpdateTodo(c.UserContext(), id, set, upsert)
	if err != nil {
		h.log.WithError(err).WithField("todoId", id).Error("update todo failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}
	if res.Modified == 0 {
		if res.Upserted > 0 {
			h.log.WithField("todoId", id).Warn("status update inserted a new todo")
		}
		return failMessage(c, fiber.StatusNotFound, msgNoTodoChanged)
	}

	status := ""
	if set.Status != nil {
		status = *set.Status
	}
	h.publish(c, kind, id, status)
	return success(c, set)
}

// publish is best effort: a failed notification never fails the request.
// The event goes to the caller's sessions, not to the todo's owner.
func (h *TodoHandler) publish(c *fiber.Ctx, kind events.Type, id, status string) {
	ev := events.Event{
		Type:     kind,
		UserName: middleware.UserName(c),
		TodoID:   id,
		Status:   status,
		At:       h.now(),
	}
	if err := h.events.Publish(c.UserContext(), ev); err != nil {
		h.log.WithError(err).WithField("todoId", id).Warn("publish todo event failed")
	}
}
