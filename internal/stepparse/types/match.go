package types

import "fmt"

// ProductionMatch is a successfully consumed production: the production
// name, the matched text, and its offsets within the source. ProductionMatch
// values are derived and immutable once produced by the engine.
type ProductionMatch struct {
	Production string
	Matched    string
	Start      int
	End        int
}

func (m ProductionMatch) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", m.Production, m.Matched, m.Start, m.End)
}

// Equal returns whether m equals o.
func (m ProductionMatch) Equal(o any) bool {
	other, ok := o.(ProductionMatch)
	if !ok {
		otherPtr, ok := o.(*ProductionMatch)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return m.Production == other.Production && m.Matched == other.Matched &&
		m.Start == other.Start && m.End == other.End
}
