// Package models содержит доменную модель класса дефекта.
package models

// ClassCount представляет класс (категорию дефекта) продукта.
// Имя поля Class на проводе — "class", как в схеме бэкенда.
type ClassCount struct {
	ID        int    `json:"id"`
	Class     string `json:"class"`
	ProductID int    `json:"product_id"`
}

// ClassCountInput используется для приёма данных при создании и изменении класса.
type ClassCountInput struct {
	Class     string `json:"class" validate:"required"`           // Название класса
	ProductID int    `json:"product_id" validate:"required,gt=0"` // Продукт-владелец
}
