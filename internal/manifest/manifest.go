// Package manifest tracks which original source file owns each line of a
// staged, concatenated source file. The pipeline concatenates author source
// with generated glue before handing it to the compiler, so any compiler
// error arrives with staged coordinates; the manifest remaps those back to
// the file and line the author actually wrote.
package manifest

import "fmt"

// Fragment records that a contiguous range of staged lines originated in one
// source file.
type Fragment struct {
	// File is the original path, or a generator tag such as "<zigbind>" for
	// lines with no author counterpart.
	File string

	// StartLine is the first staged line (1-based) the fragment owns.
	StartLine int

	// Lines is the number of staged lines the fragment owns.
	Lines int

	// OriginLine is the original line number of the fragment's first line.
	OriginLine int
}

// Map is the line-ownership record for one staged source file.
type Map struct {
	fragments []Fragment
}

// Builder accumulates fragments as the staged file is assembled.
type Builder struct {
	m    Map
	next int
}

// NewBuilder returns a Builder whose first appended fragment starts at
// staged line 1.
func NewBuilder() *Builder {
	return &Builder{next: 1}
}

// Append records that the next n staged lines came from file, starting at
// originLine within it.
func (b *Builder) Append(file string, originLine, n int) {
	if n <= 0 {
		return
	}
	b.m.fragments = append(b.m.fragments, Fragment{
		File:       file,
		StartLine:  b.next,
		Lines:      n,
		OriginLine: originLine,
	})
	b.next += n
}

// Build finalizes the map. The Builder must not be reused afterwards.
func (b *Builder) Build() *Map {
	return &b.m
}

// Resolve maps a staged line back to its original file and line. Lines
// outside any recorded fragment resolve to the staged coordinates unchanged,
// with an empty file, so callers can still report something.
func (m *Map) Resolve(stagedLine int) (file string, line int, ok bool) {
	if m == nil {
		return "", stagedLine, false
	}
	for _, f := range m.fragments {
		if stagedLine >= f.StartLine && stagedLine < f.StartLine+f.Lines {
			return f.File, f.OriginLine + (stagedLine - f.StartLine), true
		}
	}
	return "", stagedLine, false
}

// Fragments returns the recorded fragments in staged-line order.
func (m *Map) Fragments() []Fragment {
	if m == nil {
		return nil
	}
	return m.fragments
}

// FormatLocation renders a staged line as "file:line" after remapping, or
// "staged:line" when the line belongs to no recorded fragment.
func (m *Map) FormatLocation(stagedLine int) string {
	file, line, ok := m.Resolve(stagedLine)
	if !ok {
		return fmt.Sprintf("staged:%d", stagedLine)
	}
	return fmt.Sprintf("%s:%d", file, line)
}
