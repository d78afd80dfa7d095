package config

import "time"

// AutosaveConfig задает задержку отложенного сохранения черновика.
type AutosaveConfig struct {
	Delay time.Duration `yaml:"delay" env:"NOTES_AUTOSAVE_DELAY" env-default:"1s"`
}

// QueryConfig задает локаль для сортировки по заголовку.
type QueryConfig struct {
	Locale string `yaml:"locale" env:"NOTES_QUERY_LOCALE" env-default:"en"`
}
