package room

import "sync"

// Canvas is a fixed-size grid of hex color strings. Cells are indexed
// column-first (cells[x][y]) to match the wire format clients draw from.
// Dimensions are fixed at creation.
type Canvas struct {
	width  int
	height int

	mu    sync.RWMutex
	cells [][]string
}

func NewCanvas(width, height int, defaultColor string) *Canvas {
	cells := make([][]string, width)

	for x := 0; x < width; x++ {
		cells[x] = make([]string, height)
		for y := 0; y < height; y++ {
			cells[x][y] = defaultColor
		}
	}

	return &Canvas{
		width:  width,
		height: height,
		cells:  cells,
	}
}

func (c *Canvas) Width() int {
	return c.width
}

func (c *Canvas) Height() int {
	return c.height
}

func (c *Canvas) Get(x, y int) (string, error) {
	if !c.inBounds(x, y) {
		return "", ErrOutOfBounds
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cells[x][y], nil
}

func (c *Canvas) Set(x, y int, color string) error {
	if !c.inBounds(x, y) {
		return ErrOutOfBounds
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cells[x][y] = color

	return nil
}

// SetAndSnapshot writes one cell and copies the resulting grid under a single
// lock acquisition, so concurrent writers cannot interleave between a write
// and the board state broadcast for it.
func (c *Canvas) SetAndSnapshot(x, y int, color string) ([][]string, error) {
	if !c.inBounds(x, y) {
		return nil, ErrOutOfBounds
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cells[x][y] = color

	return c.copyCells(), nil
}

// Snapshot returns a deep copy of the grid safe to hand to the transport.
func (c *Canvas) Snapshot() [][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.copyCells()
}

func (c *Canvas) copyCells() [][]string {
	board := make([][]string, c.width)

	for x := range c.cells {
		board[x] = make([]string, c.height)
		copy(board[x], c.cells[x])
	}

	return board
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}
