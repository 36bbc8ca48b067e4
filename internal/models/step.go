// Package models содержит доменную модель шага проверки.
package models

const (
	// MinStepNumber минимально допустимый номер шага проверки.
	MinStepNumber = 1
	// MaxStepNumber максимально допустимый номер шага проверки.
	MaxStepNumber = 20
)

// Step представляет шаг проверки продукта.
// Номер шага уникален в пределах продукта и лежит в диапазоне [1, 20].
type Step struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ProductID  int    `json:"product_id"`
	StepNumber int    `json:"step_number"`
}

// StepInput используется для приёма данных при создании и изменении шага.
type StepInput struct {
	Name       string `json:"name" validate:"required"`                     // Название шага
	ProductID  int    `json:"product_id" validate:"required,gt=0"`          // Продукт-владелец
	StepNumber int    `json:"step_number" validate:"required,gte=1,lte=20"` // Номер шага в пределах продукта
}
