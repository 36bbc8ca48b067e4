// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога:
// ошибки, теги операций и корреляционные идентификаторы запросов.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
// Удобно использовать в логировании для единообразного вывода ошибок.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Op возвращает slog.Attr с тегом операции в формате "pkg.Fn".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// CorrelationID возвращает slog.Attr с корреляционным идентификатором запроса.
func CorrelationID(id string) slog.Attr {
	return slog.String("correlation_id", id)
}

// Token возвращает slog.Attr с усечённым токеном, чтобы секрет
// не попадал в лог целиком.
func Token(token string) slog.Attr {
	const visible = 8
	if len(token) > visible {
		token = token[:visible] + "..."
	}
	return slog.String("token", token)
}
