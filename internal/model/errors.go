package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indica campo obrigatório ausente na submissão
	ErrValidation = errors.New("dados de contato inválidos")

	// ErrConfiguration indica que o destino do lead não foi configurado
	ErrConfiguration = errors.New("destino do lead não configurado")

	// ErrTransport indica falha de rede ou status não-2xx do destino
	ErrTransport = errors.New("falha ao entregar lead")
)

// ValidationError aponta o campo obrigatório que está vazio
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo obrigatório ausente: %s", e.Field)
}

// Is permite errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError aponta a variável de ambiente ausente
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s não configurado", e.Key)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// TransportError descreve a falha de entrega. StatusCode é 0 quando o
// destino não respondeu.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("destino retornou status %d", e.StatusCode)
	}
	return fmt.Sprintf("enviar lead: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
