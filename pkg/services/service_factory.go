package services

import (
	"sync"

	"github.com/deploymenttheory/go-minidump/internal/device"
)

// ServiceFactory provides a centralized way to create and manage minidump services
type ServiceFactory struct {
	config          *device.Config
	minidumpService MinidumpService
	prober          *Prober
	mu              sync.Mutex
	initialized     bool
}

// NewServiceFactory creates a new service factory instance. A nil config uses defaults.
func NewServiceFactory(config *device.Config) *ServiceFactory {
	if config == nil {
		config = DefaultConfig()
	}
	return &ServiceFactory{config: config}
}

// Initialize initializes all services with their dependencies
func (sf *ServiceFactory) Initialize() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.initializeLocked()
	return nil
}

func (sf *ServiceFactory) initializeLocked() {
	if sf.initialized {
		return
	}
	sf.minidumpService = NewMinidumpService(sf.config)
	sf.prober = NewProber(MinidumpFormat{Config: sf.config})
	sf.initialized = true
}

// MinidumpService returns the minidump service instance
func (sf *ServiceFactory) MinidumpService() MinidumpService {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.initializeLocked()
	return sf.minidumpService
}

// Prober returns the format prober instance
func (sf *ServiceFactory) Prober() *Prober {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.initializeLocked()
	return sf.prober
}

// Config returns the configuration shared by all services
func (sf *ServiceFactory) Config() *device.Config {
	return sf.config
}
