package app

import (
	"github.com/google/uuid"

	"notekeeper/internal/notes/ports/services"
)

// NewUUIDGenerator выдает UUIDv7: идентификаторы упорядочены по времени
// создания и не совпадают при создании нескольких объектов в одну миллисекунду.
func NewUUIDGenerator() services.IDGenerator {
	return services.IDGeneratorFunc(func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	})
}
