package content

import "fmt"

// Positioned is any node carrying a dense 1..N rank within its sibling group.
type Positioned interface {
	Position() int
	SetPosition(n int)
}

// InvalidPositionError reports a requested rank outside [1, sibling count].
type InvalidPositionError struct {
	Requested int
	Count     int
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("position %d out of range [1, %d]", e.Requested, e.Count)
}

// Move re-ranks node to newPos within siblings, shifting every sibling
// between the old and new rank by exactly one so the 1..N density invariant
// holds. It mutates in-memory fields only and returns the nodes whose
// position changed (node included); the caller persists them. siblings must
// contain node itself.
func Move[T interface {
	Positioned
	comparable
}](node T, newPos int, siblings []T) ([]T, error) {
	count := len(siblings)
	if newPos < 1 || newPos > count {
		return nil, &InvalidPositionError{Requested: newPos, Count: count}
	}

	old := node.Position()
	if newPos == old {
		return nil, nil
	}

	var changed []T
	for _, s := range siblings {
		if s == node {
			continue
		}
		p := s.Position()
		switch {
		case newPos > old && p > old && p <= newPos:
			s.SetPosition(p - 1)
			changed = append(changed, s)
		case newPos < old && p >= newPos && p < old:
			s.SetPosition(p + 1)
			changed = append(changed, s)
		}
	}
	node.SetPosition(newPos)
	changed = append(changed, node)
	return changed, nil
}

// ShiftAfterDelete renumbers survivors after the sibling at deletedPos was
// removed: every position above it decrements by one. Returns the nodes that
// changed, for the caller to persist.
func ShiftAfterDelete[T Positioned](survivors []T, deletedPos int) []T {
	var changed []T
	for _, s := range survivors {
		if p := s.Position(); p > deletedPos {
			s.SetPosition(p - 1)
			changed = append(changed, s)
		}
	}
	return changed
}
