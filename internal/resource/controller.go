// Package resource реализует обобщённый контроллер CRUD-ресурса:
// список, создание, изменение и удаление сущностей одного типа
// с локальной валидацией до любого сетевого вызова и политикой
// "обновление после записи" — после каждой успешной мутации коллекция
// перечитывается с сервера целиком, а не правится на месте.
package resource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

// Gateway описывает контракт шлюза, нужный контроллеру.
type Gateway interface {
	JSON(ctx context.Context, method, path string, body, out any, opts ...gateway.Option) gateway.Result
}

// ValidationError ошибка локальной валидации: до шлюза запрос не дошёл.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// OpError ошибка операции, нормализованная шлюзом.
type OpError struct {
	Message string
}

func (e *OpError) Error() string { return e.Message }

// Schema описывает один тип сущности для обобщённого контроллера:
// имя для текстов ошибок, путь коллекции на бэкенде и переопределения
// сообщений валидации по именам полей.
type Schema struct {
	Name          string            // Имя сущности в единственном числе, например "company"
	Path          string            // Путь коллекции, например "/companies"
	FieldMessages map[string]string // Переопределения текста ошибки валидации по полю
}

// Controller обобщённый CRUD-контроллер одной сущности.
//
// Коллекция — клиентское зеркало серверных строк: она заменяется целиком
// при каждом успешном List и никогда не правится локально.
type Controller[T any] struct {
	log        *slog.Logger
	gw         Gateway
	schema     Schema
	validate   *validator.Validate
	collection []T
}

// New создаёт контроллер для сущности по её схеме.
func New[T any](log *slog.Logger, gw Gateway, schema Schema) *Controller[T] {
	return &Controller[T]{
		log:      log,
		gw:       gw,
		schema:   schema,
		validate: validator.New(),
	}
}

// Collection возвращает текущее клиентское зеркало коллекции.
func (c *Controller[T]) Collection() []T {
	return c.collection
}

// List перечитывает коллекцию с сервера и заменяет локальное зеркало целиком.
func (c *Controller[T]) List(ctx context.Context) ([]T, error) {
	const op = "resource.List"

	var items []T
	res := c.gw.JSON(ctx, http.MethodGet, c.schema.Path, nil, &items,
		gateway.WithFallback(fmt.Sprintf("could not load %s list", c.schema.Name)))
	if !res.OK {
		c.log.Error("failed to list", sl.Op(op), slog.String("entity", c.schema.Name), slog.String("cause", res.Err))
		return nil, &OpError{Message: res.Err}
	}
	c.collection = items
	return items, nil
}

// Create валидирует входные данные и создаёт сущность.
// При успехе коллекция перечитывается с сервера, чтобы зеркало содержало
// назначенные сервером идентификаторы и значения по умолчанию.
func (c *Controller[T]) Create(ctx context.Context, input any) (*T, error) {
	const op = "resource.Create"

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	var created T
	res := c.gw.JSON(ctx, http.MethodPost, c.schema.Path, input, &created,
		gateway.WithFallback(fmt.Sprintf("could not create %s", c.schema.Name)))
	if !res.OK {
		c.log.Error("failed to create", sl.Op(op), slog.String("entity", c.schema.Name), slog.String("cause", res.Err))
		return nil, &OpError{Message: res.Err}
	}

	c.refresh(ctx, op)
	return &created, nil
}

// Update валидирует входные данные и изменяет сущность по идентификатору.
// Дисциплина обновления та же, что у Create.
func (c *Controller[T]) Update(ctx context.Context, id int, input any) (*T, error) {
	const op = "resource.Update"

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	var updated T
	res := c.gw.JSON(ctx, http.MethodPut, fmt.Sprintf("%s/%d", c.schema.Path, id), input, &updated,
		gateway.WithFallback(fmt.Sprintf("could not update %s", c.schema.Name)))
	if !res.OK {
		c.log.Error("failed to update", sl.Op(op), slog.String("entity", c.schema.Name), slog.String("cause", res.Err))
		return nil, &OpError{Message: res.Err}
	}

	c.refresh(ctx, op)
	return &updated, nil
}

// Delete удаляет сущность по идентификатору и перечитывает коллекцию.
func (c *Controller[T]) Delete(ctx context.Context, id int) error {
	const op = "resource.Delete"

	res := c.gw.JSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", c.schema.Path, id), nil, nil,
		gateway.WithFallback(fmt.Sprintf("could not delete %s", c.schema.Name)))
	if !res.OK {
		c.log.Error("failed to delete", sl.Op(op), slog.String("entity", c.schema.Name), slog.String("cause", res.Err))
		return &OpError{Message: res.Err}
	}

	c.refresh(ctx, op)
	return nil
}

// refresh перечитывает коллекцию после успешной записи.
// Неудачное перечитывание не отменяет уже состоявшуюся запись:
// зеркало остаётся прежним до следующего List.
func (c *Controller[T]) refresh(ctx context.Context, op string) {
	if _, err := c.List(ctx); err != nil {
		c.log.Error("refresh after write failed", sl.Op(op), slog.String("entity", c.schema.Name), sl.Err(err))
	}
}

// validateInput проверяет входные данные до любого сетевого вызова.
func (c *Controller[T]) validateInput(input any) error {
	err := c.validate.Struct(input)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Message: fmt.Sprintf("invalid %s data", c.schema.Name)}
	}
	first := errs[0]
	if msg, found := c.schema.FieldMessages[first.Field()]; found {
		return &ValidationError{Message: msg}
	}
	return &ValidationError{Message: fmt.Sprintf("field %s is not valid", first.Field())}
}
