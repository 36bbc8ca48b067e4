// Package gateway реализует авторизованный шлюз запросов к бэкенду
// системы контроля качества: подстановку bearer-токена, нормализацию
// ошибок в единый формат результата и скачивание файлов.
package gateway

// Result единый формат исхода запроса для вызывающих.
// Поле OK — признак успеха. Поле Err — человекочитаемое сообщение
// об ошибке (текст бэкенда, если он его прислал, иначе запасной текст операции).
type Result struct {
	OK  bool
	Err string
}

// Success возвращает успешный Result.
func Success() Result {
	return Result{OK: true}
}

// Fail возвращает Result с сообщением об ошибке.
func Fail(msg string) Result {
	return Result{OK: false, Err: msg}
}

// errorBody форма тела ошибки бэкенда. Бэкенд использует оба ключа
// в разных обработчиках, клиент принимает любой.
type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// message возвращает наиболее специфичное сообщение из тела ошибки.
func (e errorBody) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
