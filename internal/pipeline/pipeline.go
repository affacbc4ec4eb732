// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs named steps in order and records each completed step
// in a persisted state map, so an interrupted run resumes at the first step
// that has not finished.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrDuplicateStep is returned by AddStep when a step with the same name is
// already registered. The name is the resume key, so it must be unique.
var ErrDuplicateStep = errors.New("duplicate pipeline step")

// Step is one stage of the pipeline. Run must be safe to repeat after an
// interruption: a step that fails or is interrupted is not marked complete
// and runs again in full on the next invocation.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

// StateStore persists the step-name → completed map.
type StateStore interface {
	LoadState() (map[string]bool, error)
	SaveState(state map[string]bool) error
}

// Pipeline executes steps sequentially.
type Pipeline struct {
	store  StateStore
	logger *slog.Logger
	steps  []Step
	names  map[string]bool
}

// New returns an empty pipeline backed by store.
func New(store StateStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:  store,
		logger: logger,
		names:  make(map[string]bool),
	}
}

// AddStep appends a step. Registering two steps with the same name fails
// with ErrDuplicateStep.
func (p *Pipeline) AddStep(step Step) error {
	name := step.Name()
	if p.names[name] {
		return fmt.Errorf("%w: %q", ErrDuplicateStep, name)
	}
	p.names[name] = true
	p.steps = append(p.steps, step)
	return nil
}

// Steps returns the names of the registered steps in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run loads the state and executes every step not yet marked complete.
// After each successful step the whole state is saved immediately.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("loading state")
	state, err := p.store.LoadState()
	if err != nil {
		return fmt.Errorf("loading pipeline state: %w", err)
	}

	for _, step := range p.steps {
		name := step.Name()
		if state[name] {
			p.logger.Info("step already done, skipping", "step", name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		p.logger.Info("starting step", "step", name)
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("step %s: %w", name, err)
		}
		p.logger.Info("finished step", "step", name)

		state[name] = true
		if err := p.store.SaveState(state); err != nil {
			return fmt.Errorf("saving state after step %s: %w", name, err)
		}
	}
	return nil
}
