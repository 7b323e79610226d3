package service

import (
	"basegraph.app/assist/internal/queue"
	"basegraph.app/assist/internal/store"
)

type ServicesConfig struct {
	Dispatcher Dispatcher
	Stores     *store.Stores  // nil disables invocation history
	Events     queue.Producer // nil disables the activity stream
}

type Services struct {
	assistant AssistantService
}

func NewServices(cfg ServicesConfig) *Services {
	var invocations store.InvocationStore
	if cfg.Stores != nil {
		invocations = cfg.Stores.Invocations()
	}

	return &Services{
		assistant: NewAssistantService(cfg.Dispatcher, invocations, cfg.Events),
	}
}

func (s *Services) Assistant() AssistantService {
	return s.assistant
}
