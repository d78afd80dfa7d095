package config

import (
	"notekeeper/pkg/logger"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTES_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTES_LOGGER_MODE" env-default:"development"`
	File  string `yaml:"file" env:"NOTES_LOGGER_FILE" env-default:""`
}

// GetEnvironment получает строку режима в logger environment.
func (l *LoggingConfig) GetEnvironment() logger.Environment {
	if l.Mode == "production" {
		return logger.Production
	}
	return logger.Development
}

// GetOptions возвращает дополнительные параметры вывода журнала.
func (l *LoggingConfig) GetOptions() logger.Options {
	return logger.Options{FilePath: l.File}
}
