package filter

type Op string

const (
	OpEquals    Op = ""
	OpIn        Op = "in"
	OpGte       Op = "gte"
	OpLte       Op = "lte"
	OpContains  Op = "contains"
	OpIContains Op = "ilike"
)

func parseOp(s string) (Op, bool) {
	switch Op(s) {
	case OpIn, OpGte, OpLte, OpContains, OpIContains:
		return Op(s), true
	}
	return "", false
}

// Predicate is one of Equals, In, Gte, Lte, Contains or IContains.
type Predicate interface {
	Field() Field
	Op() Op
}

type Equals struct {
	F     Field
	Value interface{}
}

type In struct {
	F      Field
	Values []interface{}
}

type Gte struct {
	F     Field
	Value interface{}
}

type Lte struct {
	F     Field
	Value interface{}
}

// Contains matches a case sensitive substring.
type Contains struct {
	F         Field
	Substring string
}

// IContains matches a case insensitive substring.
type IContains struct {
	F         Field
	Substring string
}

func (p Equals) Field() Field    { return p.F }
func (p In) Field() Field        { return p.F }
func (p Gte) Field() Field       { return p.F }
func (p Lte) Field() Field       { return p.F }
func (p Contains) Field() Field  { return p.F }
func (p IContains) Field() Field { return p.F }

func (Equals) Op() Op    { return OpEquals }
func (In) Op() Op        { return OpIn }
func (Gte) Op() Op       { return OpGte }
func (Lte) Op() Op       { return OpLte }
func (Contains) Op() Op  { return OpContains }
func (IContains) Op() Op { return OpIContains }
