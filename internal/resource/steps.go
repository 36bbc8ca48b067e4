package resource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// StepController контроллер шагов проверки поверх обобщённого контроллера.
//
// Добавляет локальную политику номеров шагов: номер выбирается из
// диапазона [1, 20] и уникален в пределах продукта. Нарушение политики
// блокирует запись до любого сетевого вызова.
type StepController struct {
	*Controller[models.Step]
}

// Steps создаёт контроллер шагов проверки.
func Steps(log *slog.Logger, gw Gateway) *StepController {
	return &StepController{
		Controller: New[models.Step](log, gw, Schema{
			Name: "step",
			Path: "/steps",
			FieldMessages: map[string]string{
				"Name":       "Step name is required",
				"ProductID":  "Product is required",
				"StepNumber": "Step number must be between 1 and 20",
			},
		}),
	}
}

// AvailableNumbers возвращает номера из [1, 20], ещё не занятые шагами
// продукта productID. Шаг excludeStepID не учитывается — при редактировании
// собственный номер шага остаётся доступным. Для нового шага
// передаётся excludeStepID == 0.
func (c *StepController) AvailableNumbers(productID, excludeStepID int) []int {
	taken := make(map[int]bool)
	for _, step := range c.Collection() {
		if step.ProductID == productID && step.ID != excludeStepID {
			taken[step.StepNumber] = true
		}
	}
	var available []int
	for n := models.MinStepNumber; n <= models.MaxStepNumber; n++ {
		if !taken[n] {
			available = append(available, n)
		}
	}
	return available
}

// CreateStep создаёт шаг, если его номер свободен для продукта.
// Занятый номер или исчерпанный диапазон блокируют создание локально.
func (c *StepController) CreateStep(ctx context.Context, input models.StepInput) (*models.Step, error) {
	if err := c.checkNumber(input, 0); err != nil {
		return nil, err
	}
	return c.Create(ctx, input)
}

// UpdateStep изменяет шаг с той же локальной проверкой номера,
// исключая из неё сам редактируемый шаг.
func (c *StepController) UpdateStep(ctx context.Context, id int, input models.StepInput) (*models.Step, error) {
	if err := c.checkNumber(input, id); err != nil {
		return nil, err
	}
	return c.Update(ctx, id, input)
}

// checkNumber проверяет политику номеров до сетевого вызова.
func (c *StepController) checkNumber(input models.StepInput, excludeStepID int) error {
	if input.ProductID <= 0 {
		// Валидацию обязательных полей сделает обобщённый контроллер
		return nil
	}
	available := c.AvailableNumbers(input.ProductID, excludeStepID)
	if len(available) == 0 {
		return &ValidationError{Message: "No step numbers available for this product"}
	}
	if input.StepNumber < models.MinStepNumber || input.StepNumber > models.MaxStepNumber {
		// Диапазон проверит валидатор обобщённого контроллера
		return nil
	}
	for _, n := range available {
		if n == input.StepNumber {
			return nil
		}
	}
	return &ValidationError{
		Message: fmt.Sprintf("Step number %d is already taken for this product", input.StepNumber),
	}
}
