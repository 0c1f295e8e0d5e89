package services

import "errors"

// Ошибки уровня сервисов. Хендлеры сопоставляют их с HTTP-статусами через errors.Is.
var (
	// ErrValidation - некорректные входные данные (пустое или слишком длинное сообщение)
	ErrValidation = errors.New("validation error")
	// ErrAuthorization - вызывающему не хватает прав на операцию
	ErrAuthorization = errors.New("authorization error")
	// ErrNotFound - операция ссылается на неизвестного пользователя
	ErrNotFound = errors.New("not found")
	// ErrStore - отказ нижележащего хранилища; операцию можно повторить целиком
	ErrStore = errors.New("store error")
)
