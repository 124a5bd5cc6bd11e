package ast

import "fmt"

// Position is a single point in a grammar source: 1-based line and
// column, 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d@%d", p.Line, p.Column, p.Offset)
}

// Location spans a range of a named grammar source.
type Location struct {
	Source string
	Start  Position
	End    Position
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s-%s", l.Source, l.Start, l.End)
}

// Contains reports whether l fully contains other, by offset.
func (l Location) Contains(other Location) bool {
	return l.Start.Offset <= other.Start.Offset && other.End.Offset <= l.End.Offset
}
