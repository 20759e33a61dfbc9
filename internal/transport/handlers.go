package transport

import (
	"github.com/Ace0731/Image-Converter/config"
	"github.com/Ace0731/Image-Converter/internal/service"
)

type Handlers struct {
	Conversion *ConversionHandler
	Health     *HealthHandler
}

func NewHandlers(svc service.ConversionService, publisher service.Publisher, defaults config.ConvertConfig) *Handlers {
	return &Handlers{
		Conversion: NewConversionHandler(svc, defaults),
		Health:     NewHealthHandler(publisher),
	}
}

type ConversionHandler struct {
	service  service.ConversionService
	defaults config.ConvertConfig
}

// NewConversionHandler fills a missing format or quality from defaults.
func NewConversionHandler(service service.ConversionService, defaults config.ConvertConfig) *ConversionHandler {
	return &ConversionHandler{service: service, defaults: defaults}
}

type HealthHandler struct {
	publisher service.Publisher
}

func NewHealthHandler(publisher service.Publisher) *HealthHandler {
	return &HealthHandler{publisher: publisher}
}
