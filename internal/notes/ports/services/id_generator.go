package services

// IDGenerator выдает уникальные идентификаторы заметок и папок.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc адаптирует функцию к IDGenerator.
type IDGeneratorFunc func() string

// NewID вызывает f.
func (f IDGeneratorFunc) NewID() string { return f() }
