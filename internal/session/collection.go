package session

import "rescale/internal/scaler"

// Collection is an ordered list of inputs with a cursor. Navigation wraps
// around both ends.
type Collection struct {
	items []scaler.Input
	index int
}

func NewCollection(items []scaler.Input) *Collection {
	return &Collection{items: append([]scaler.Input(nil), items...)}
}

func (c *Collection) Len() int   { return len(c.items) }
func (c *Collection) Index() int { return c.index }

// Current returns the input under the cursor.
func (c *Collection) Current() (scaler.Input, error) {
	if len(c.items) == 0 {
		return nil, ErrEmptyCollection
	}
	return c.items[c.index], nil
}

// Next moves the cursor forward, wrapping to the first item.
func (c *Collection) Next() (scaler.Input, error) {
	return c.move(1)
}

// Prev moves the cursor back, wrapping to the last item.
func (c *Collection) Prev() (scaler.Input, error) {
	return c.move(-1)
}

func (c *Collection) move(delta int) (scaler.Input, error) {
	n := len(c.items)
	if n == 0 {
		return nil, ErrEmptyCollection
	}
	c.index = ((c.index+delta)%n + n) % n
	return c.items[c.index], nil
}

// Items returns a copy of the inputs in order.
func (c *Collection) Items() []scaler.Input {
	return append([]scaler.Input(nil), c.items...)
}
