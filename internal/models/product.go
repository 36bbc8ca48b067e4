// Package models содержит доменную модель продукта.
package models

// Product представляет продукт, выпускаемый компанией.
// Поле ImageURL может быть пустым — обложка продукта задаётся отдельно.
type Product struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CompanyID int    `json:"company_id"`
	ImageURL  string `json:"image_url,omitempty"`
}

// ProductInput используется для приёма данных при создании и изменении продукта.
type ProductInput struct {
	Name      string `json:"name" validate:"required"`                     // Название продукта
	CompanyID int    `json:"company_id" validate:"required,gt=0"`          // Компания-владелец
	ImageURL  string `json:"image_url,omitempty" validate:"omitempty,url"` // Обложка продукта
}
