// Package boardtype maps toolchain configuration symbols to board-type
// identifiers by scanning a component CMakeLists document.
//
// The document is treated as line-oriented text, not parsed as CMake:
// a mapping is recorded wherever a conditional guard line of the form
// if(CONFIG_BOARD_TYPE_X) is immediately followed by a line assigning
// set(BOARD_TYPE "x"). Unrelated lines are tolerated and ignored.
package boardtype

import (
	"fmt"
	"os"
	"strings"
)

const symbolPrefix = "CONFIG_BOARD_TYPE_"

// SymbolMap associates toolchain configuration symbols with the
// board-type identifiers they select. Entries preserve document order
// so that reverse lookups are deterministic on malformed documents
// that declare the same board type twice (first match wins).
type SymbolMap struct {
	symbols []string
	types   map[string]string
}

// ParseSymbolMap scans the component CMakeLists text and records every
// guard/assignment line pair. A guard without an immediately following
// assignment contributes nothing. The first pair seen for a symbol
// wins.
func ParseSymbolMap(text string) *SymbolMap {
	m := &SymbolMap{types: make(map[string]string)}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "if("+symbolPrefix) {
			continue
		}
		symbol := strings.TrimSpace(line)
		symbol = strings.SplitN(symbol, "if(", 2)[1]
		symbol = strings.SplitN(symbol, ")", 2)[0]
		if i+1 >= len(lines) {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		if !strings.HasPrefix(next, "set(BOARD_TYPE") {
			continue
		}
		fields := strings.Split(next, `"`)
		if len(fields) < 2 {
			continue
		}
		if _, ok := m.types[symbol]; ok {
			continue
		}
		m.symbols = append(m.symbols, symbol)
		m.types[symbol] = fields[1]
	}
	return m
}

// LoadSymbolMap reads the component CMakeLists document at path and
// parses it.
func LoadSymbolMap(path string) (*SymbolMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseSymbolMap(string(data)), nil
}

// BoardType returns the board type selected by the given symbol.
func (m *SymbolMap) BoardType(symbol string) (string, bool) {
	bt, ok := m.types[symbol]
	return bt, ok
}

// SymbolFor returns the first symbol, in document order, whose
// recorded board type equals boardType. A document declaring the same
// board type under two symbols resolves to the earlier one.
func (m *SymbolMap) SymbolFor(boardType string) (string, bool) {
	for _, symbol := range m.symbols {
		if m.types[symbol] == boardType {
			return symbol, true
		}
	}
	return "", false
}

// HasBoardType reports whether any symbol selects the given board type.
func (m *SymbolMap) HasBoardType(boardType string) bool {
	_, ok := m.SymbolFor(boardType)
	return ok
}

// Len returns the number of recorded symbol mappings.
func (m *SymbolMap) Len() int {
	return len(m.symbols)
}
