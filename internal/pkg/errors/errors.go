package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrRetrieval используется, когда хранилище оценок недоступно или запрос к нему завершился ошибкой.
	// Оборачивается вместе с исходной ошибкой и именем вызова хранилища.
	ErrRetrieval = errors.New("score store retrieval failed")

	// ErrDataIntegrity используется, когда связанная сущность отсутствует
	// или вычисленный знаменатель равен нулю/не является конечным числом.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrRender используется, когда не удалось сформировать таблицу отчета (xlsx/csv).
	ErrRender = errors.New("report render failed")
)
