// Package specification provides composable, side-effect-free predicates over
// an entity type. Specifications combine with And, Or and Not; composition
// always allocates new values and never mutates operands.
package specification

import "fmt"

// Specification is a boolean predicate over T plus combinators producing new
// specification values.
type Specification[T any] interface {
	// IsSatisfiedBy reports whether the candidate matches the predicate.
	IsSatisfiedBy(candidate T) bool

	// And returns a specification satisfied when both operands are.
	// Evaluation short-circuits left-to-right.
	And(other Specification[T]) Specification[T]

	// Or returns a specification satisfied when either operand is.
	// Evaluation short-circuits left-to-right.
	Or(other Specification[T]) Specification[T]

	// Not returns the logical negation. Negating a negation returns the
	// original specification rather than stacking wrappers.
	Not() Specification[T]

	// Description returns a composed textual form for debugging and logging.
	// It carries no semantic weight.
	Description() string
}

// New builds a specification from a description and a predicate function.
func New[T any](description string, predicate func(T) bool) Specification[T] {
	return &spec[T]{description: description, predicate: predicate}
}

// spec is the single concrete specification type. Combinators build new spec
// values whose predicate closes over the operands; a negation additionally
// records the negated specification so double negation can collapse.
type spec[T any] struct {
	description string
	predicate   func(T) bool
	negated     Specification[T] // set only when this spec is a Not() wrapper
}

func (s *spec[T]) IsSatisfiedBy(candidate T) bool {
	return s.predicate(candidate)
}

func (s *spec[T]) And(other Specification[T]) Specification[T] {
	return &spec[T]{
		description: fmt.Sprintf("(%s AND %s)", s.description, other.Description()),
		predicate: func(candidate T) bool {
			return s.IsSatisfiedBy(candidate) && other.IsSatisfiedBy(candidate)
		},
	}
}

func (s *spec[T]) Or(other Specification[T]) Specification[T] {
	return &spec[T]{
		description: fmt.Sprintf("(%s OR %s)", s.description, other.Description()),
		predicate: func(candidate T) bool {
			return s.IsSatisfiedBy(candidate) || other.IsSatisfiedBy(candidate)
		},
	}
}

func (s *spec[T]) Not() Specification[T] {
	if s.negated != nil {
		return s.negated
	}
	return &spec[T]{
		description: fmt.Sprintf("NOT(%s)", s.description),
		predicate: func(candidate T) bool {
			return !s.IsSatisfiedBy(candidate)
		},
		negated: s,
	}
}

func (s *spec[T]) Description() string { return s.description }
