// Package models содержит доменную модель снимка и сводки хранилища.
package models

import "time"

// CapturedImage представляет метаданные снимка, сделанного на шаге проверки.
// Сам файл живёт в объектном хранилище бэкенда, клиент видит только URL.
type CapturedImage struct {
	ID         int       `json:"id"`
	Filename   string    `json:"filename"`
	ProductID  int       `json:"product_id"`
	StepID     int       `json:"step_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	StorageURL string    `json:"storage_url,omitempty"`
	FileSize   int64     `json:"file_size,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
}

// ProductImages группа снимков одного продукта.
type ProductImages struct {
	ProductID int
	Images    []CapturedImage
}

// StorageStats сводка по объектному хранилищу снимков.
type StorageStats struct {
	TotalImages int    `json:"total_images"`
	TotalSize   int64  `json:"total_size"`
	BucketName  string `json:"bucket_name,omitempty"`
}
