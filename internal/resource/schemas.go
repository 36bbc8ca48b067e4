package resource

import (
	"log/slog"

	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// Схемы сущностей бэкенда. Каждый экран административного интерфейса
// получает собственный экземпляр контроллера: коллекции между экранами
// не разделяются.

// Companies создаёт контроллер компаний.
func Companies(log *slog.Logger, gw Gateway) *Controller[models.Company] {
	return New[models.Company](log, gw, Schema{
		Name: "company",
		Path: "/companies",
		FieldMessages: map[string]string{
			"Name": "Company name is required",
		},
	})
}

// Products создаёт контроллер продуктов.
func Products(log *slog.Logger, gw Gateway) *Controller[models.Product] {
	return New[models.Product](log, gw, Schema{
		Name: "product",
		Path: "/products",
		FieldMessages: map[string]string{
			"Name":      "Product name is required",
			"CompanyID": "Company is required",
			"ImageURL":  "Image URL must be a valid URL",
		},
	})
}

// Classes создаёт контроллер классов дефектов.
func Classes(log *slog.Logger, gw Gateway) *Controller[models.ClassCount] {
	return New[models.ClassCount](log, gw, Schema{
		Name: "class",
		Path: "/classcounts",
		FieldMessages: map[string]string{
			"Class":     "Class name is required",
			"ProductID": "Product is required",
		},
	})
}
