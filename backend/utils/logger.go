package utils

import (
	"io"
	"log"
	"os"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	// Формат логов (text/json)
	Format string
	// Выходной поток (os.Stdout, файл и т.д.)
	Output io.Writer
	// Включить/выключить цвета для консоли
	EnableColors bool
}

const colorReset = "\033[0m"

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Lumina] "

	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	}
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + colorReset // Голубой цвет
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}

// Colorize окрашивает строку в цвет HTTP статуса, если цвета включены
func Colorize(s string, status int, enabled bool) string {
	if !enabled {
		return s
	}
	return statusColor(status) + s + colorReset
}

// ColorizeMethod окрашивает HTTP метод, если цвета включены
func ColorizeMethod(method string, enabled bool) string {
	if !enabled {
		return method
	}
	return methodColor(method) + method + colorReset
}

func statusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m" // Красный
	case status >= 400:
		return "\033[33m" // Желтый
	case status >= 300:
		return "\033[36m" // Голубой
	case status >= 200:
		return "\033[32m" // Зеленый
	default:
		return "\033[37m" // Белый
	}
}

func methodColor(method string) string {
	switch method {
	case "GET":
		return "\033[34m" // Синий
	case "POST":
		return "\033[33m" // Желтый
	case "PUT":
		return "\033[36m" // Голубой
	case "DELETE":
		return "\033[31m" // Красный
	case "PATCH":
		return "\033[32m" // Зеленый
	default:
		return "\033[37m" // Белый
	}
}
