package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const numericIDMessage = "Validation failed (numeric string is expected)"

type TodoHandler struct {
	svc     *TodoService
	timeout time.Duration
}

func NewTodoHandler(svc *TodoService, timeout time.Duration) *TodoHandler {
	return &TodoHandler{svc: svc, timeout: timeout}
}

func (h *TodoHandler) Register(r gin.IRouter) {
	g := r.Group("/todo")
	g.GET("", h.ListTodos)
	g.GET("/:id", h.GetTodo)
	g.POST("", h.PostTodo)
	g.PUT("/:id", h.PutTodo)
	g.DELETE("/:id", h.DeleteTodo)
	g.PATCH("/:id/complete", h.CompleteTodo)

	r.GET("/health", h.Health)
}

func (h *TodoHandler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func abortWithStatusMessage(c *gin.Context, status int, message any) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func abortWithServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	}

	message := "Internal server error"
	var se *ServiceError
	if errors.As(err, &se) {
		message = se.Message
	}
	abortWithStatusMessage(c, status, message)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithStatusMessage(c, http.StatusBadRequest, numericIDMessage)
		return 0, false
	}
	return id, true
}

func bindBody(c *gin.Context, schema *BodySchema, dst *TodoInput) bool {
	body, err := c.GetRawData()
	if err != nil {
		abortWithStatusMessage(c, http.StatusBadRequest, err.Error())
		return false
	}
	violations, err := schema.Decode(body, dst)
	if err != nil {
		abortWithStatusMessage(c, http.StatusBadRequest, err.Error())
		return false
	}
	if len(violations) > 0 {
		abortWithStatusMessage(c, http.StatusBadRequest, violations)
		return false
	}
	return true
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	todos, err := h.svc.ListAll(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	todo, err := h.svc.GetByID(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) PostTodo(c *gin.Context) {
	var input TodoInput
	if !bindBody(c, createTodoSchema, &input) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	todo, err := h.svc.Create(ctx, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) PutTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input TodoInput
	if !bindBody(c, updateTodoSchema, &input) {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	todo, err := h.svc.Update(ctx, id, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	msg, err := h.svc.Remove(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.String(http.StatusOK, msg)
}

func (h *TodoHandler) CompleteTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	todo, err := h.svc.ToggleCompleted(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Health(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.svc.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
