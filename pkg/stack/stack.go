// Package stack provides a generic LIFO container with predicate removal
// and iteration in both directions.
//
// Stack is used by package piece to record mounted children, but has no
// knowledge of pieces and can hold any element type.
//
// A Stack is not safe for concurrent use. Callers that share a Stack
// between goroutines must provide their own locking.
package stack

import (
	"fmt"
	"iter"
	"strings"
)

// Stack is an ordered collection whose last element is the top.
// The zero value is an empty stack ready to use.
type Stack[T any] struct {
	items []T
}

// New returns an empty stack.
func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// FromSlice returns a stack holding a copy of items.
// The first element of items becomes the bottom of the stack.
func FromSlice[T any](items []T) *Stack[T] {
	s := &Stack[T]{}
	if len(items) > 0 {
		s.items = append(make([]T, 0, len(items)), items...)
	}
	return s
}

// Push adds item to the top of the stack and returns the new size.
func (s *Stack[T]) Push(item T) int {
	s.items = append(s.items, item)
	return len(s.items)
}

// Pop removes and returns the top element.
// It reports false if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, false
	}
	item := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return item, true
}

// Peek returns the top element without removing it.
// It reports false if the stack is empty.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Top is an alias for Peek.
func (s *Stack[T]) Top() (T, bool) {
	return s.Peek()
}

// IsEmpty reports whether the stack holds no elements.
func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Size returns the number of elements.
func (s *Stack[T]) Size() int {
	return len(s.items)
}

// Len is an alias for Size.
func (s *Stack[T]) Len() int {
	return s.Size()
}

// Clear removes all elements.
func (s *Stack[T]) Clear() {
	s.items = nil
}

// Delete removes the element closest to the top for which pred returns true.
// It reports whether an element was removed.
func (s *Stack[T]) Delete(pred func(T) bool) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		if pred(s.items[i]) {
			var zero T
			copy(s.items[i:], s.items[i+1:])
			s.items[len(s.items)-1] = zero
			s.items = s.items[:len(s.items)-1]
			return true
		}
	}
	return false
}

// ToSlice returns a copy of the elements, bottom first.
func (s *Stack[T]) ToSlice() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// All returns an iterator over the elements from top to bottom.
//
// Each call starts a fresh traversal. The iterator walks by index, so
// pushes or removals made while iterating can cause elements to be
// visited twice or skipped. Positions that fall past the end of a shrunken
// stack are skipped.
func (s *Stack[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := len(s.items) - 1; i >= 0; i-- {
			if i >= len(s.items) {
				continue
			}
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// BottomToTop returns an iterator over the elements in insertion order.
// It has the same mutation behavior as All.
func (s *Stack[T]) BottomToTop() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(s.items); i++ {
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// String returns the contents bottom first, e.g. "Stack[1, 2, 3]".
func (s *Stack[T]) String() string {
	var sb strings.Builder
	sb.WriteString("Stack[")
	for i, item := range s.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, item)
	}
	sb.WriteString("]")
	return sb.String()
}
