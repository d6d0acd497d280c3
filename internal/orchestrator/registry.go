package orchestrator

import (
	"fmt"
	"strings"
)

// Registry is the ordered table of operations exposed to callers.
type Registry struct {
	operations []Operation
	byName     map[string]Operation
}

// NewRegistry builds a registry preserving the provided order. Names must be unique.
func NewRegistry(operations ...Operation) (*Registry, error) {
	registry := &Registry{
		operations: make([]Operation, 0, len(operations)),
		byName:     make(map[string]Operation, len(operations)),
	}
	for _, operation := range operations {
		if operation == nil {
			continue
		}
		name := strings.TrimSpace(operation.Name())
		if _, exists := registry.byName[name]; exists {
			return nil, fmt.Errorf(duplicateOperationTemplateConstant, name)
		}
		registry.byName[name] = operation
		registry.operations = append(registry.operations, operation)
	}
	return registry, nil
}

// Lookup resolves an operation by name.
func (registry *Registry) Lookup(name string) (Operation, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	operation, exists := registry.byName[strings.TrimSpace(name)]
	if !exists {
		return nil, fmt.Errorf(unknownOperationTemplateConstant, ErrUnknownOperation, name)
	}
	return operation, nil
}

// Operations returns the registered operations in registration order.
func (registry *Registry) Operations() []Operation {
	if registry == nil {
		return nil
	}
	return append([]Operation{}, registry.operations...)
}

// Names returns the registered operation names in registration order.
func (registry *Registry) Names() []string {
	operations := registry.Operations()
	names := make([]string, 0, len(operations))
	for _, operation := range operations {
		names = append(names, operation.Name())
	}
	return names
}
