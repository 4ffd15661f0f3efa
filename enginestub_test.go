package purrview

// stubEngine is a minimal legacy-path engine recording every call.
type stubEngine struct {
	writes  [][]byte
	resizes [][2]int
	closes  int

	lines            map[int]string
	cursorX, cursorY int
}

func newStubEngine() *stubEngine {
	return &stubEngine{lines: make(map[int]string)}
}

func (e *stubEngine) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	e.writes = append(e.writes, cp)
	return len(p), nil
}

func (e *stubEngine) Resize(cols, rows int) error {
	e.resizes = append(e.resizes, [2]int{cols, rows})
	return nil
}

func (e *stubEngine) Line(row int) string { return e.lines[row] }

func (e *stubEngine) Cursor() (col, row int) { return e.cursorX, e.cursorY }

func (e *stubEngine) Close() error {
	e.closes++
	return nil
}

// written concatenates everything the engine accepted.
func (e *stubEngine) written() []byte {
	var all []byte
	for _, w := range e.writes {
		all = append(all, w...)
	}
	return all
}

// richStubEngine adds the rich cell path and dirty tracking.
type richStubEngine struct {
	stubEngine
	cellRows map[int]string
	dirty    bool
}

func newRichStubEngine() *richStubEngine {
	return &richStubEngine{
		stubEngine: stubEngine{lines: make(map[int]string)},
		cellRows:   make(map[int]string),
		dirty:      true,
	}
}

func (e *richStubEngine) CellData(row int) string { return e.cellRows[row] }

func (e *richStubEngine) Dirty() bool { return e.dirty }

func (e *richStubEngine) ClearDirty() { e.dirty = false }
