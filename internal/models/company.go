// Package models содержит доменные структуры системы контроля качества:
// компании, продукты, шаги проверки, классы дефектов и снимки,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

// Company представляет компанию-производителя в системе.
type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CompanyInput используется для приёма данных при создании и изменении компании.
type CompanyInput struct {
	Name        string `json:"name" validate:"required"` // Название компании (уникальное)
	Description string `json:"description,omitempty"`
}
