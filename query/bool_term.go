/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

// BoolTerm is a node of a WHERE/HAVING/ON tree: OrTerm, AndTerm or BoolFactor.
type BoolTerm interface {
	String() string
	// Clone returns a deep copy.
	Clone() BoolTerm
	// Reduce returns a structurally simpler equivalent, or nil when the
	// term is already reduced.
	Reduce() BoolTerm
	renderTo(t *QueryTemplate)
	visitValueExprs(fn func(*ValueExpr))
}

// BoolFactorTerm is a leaf of a BoolFactor.
type BoolFactorTerm interface {
	renderTo(t *QueryTemplate)
	cloneTerm() BoolFactorTerm
	visitValueExprs(fn func(*ValueExpr))
}

// OrTerm is a disjunction.
type OrTerm struct {
	Terms []BoolTerm
}

// AndTerm is a conjunction.
type AndTerm struct {
	Terms []BoolTerm
}

// BoolFactor is an optionally negated sequence of factor terms.
type BoolFactor struct {
	HasNot bool
	Terms  []BoolFactorTerm
}

// CompPredicate is `left op right`.
type CompPredicate struct {
	Left  *ValueExpr
	Op    string
	Right *ValueExpr
}

// BetweenPredicate is `value [NOT] BETWEEN min AND max`.
type BetweenPredicate struct {
	Value *ValueExpr
	Not   bool
	Min   *ValueExpr
	Max   *ValueExpr
}

// InPredicate is `value [NOT] IN (cands)`.
type InPredicate struct {
	Value *ValueExpr
	Not   bool
	Cands []*ValueExpr
}

// LikePredicate is `value [NOT] LIKE pattern`.
type LikePredicate struct {
	Value   *ValueExpr
	Not     bool
	Pattern *ValueExpr
}

// NullPredicate is `value IS [NOT] NULL`.
type NullPredicate struct {
	Value *ValueExpr
	Not   bool
}

// PassTerm is text emitted verbatim.
type PassTerm struct {
	Text string
}

// PassListTerm is a verbatim parenthesized list.
type PassListTerm struct {
	Terms []string
}

// BoolTermFactor is a parenthesized bool term used as a factor.
type BoolTermFactor struct {
	Term BoolTerm
}

// ValueExprTerm is a value expression used as a condition.
type ValueExprTerm struct {
	Expr *ValueExpr
}

var (
	_ BoolTerm = &OrTerm{}
	_ BoolTerm = &AndTerm{}
	_ BoolTerm = &BoolFactor{}

	_ BoolFactorTerm = &CompPredicate{}
	_ BoolFactorTerm = &BetweenPredicate{}
	_ BoolFactorTerm = &InPredicate{}
	_ BoolFactorTerm = &LikePredicate{}
	_ BoolFactorTerm = &NullPredicate{}
	_ BoolFactorTerm = &PassTerm{}
	_ BoolFactorTerm = &PassListTerm{}
	_ BoolFactorTerm = &BoolTermFactor{}
	_ BoolFactorTerm = &ValueExprTerm{}
)

// NewBoolFactor wraps a single factor term.
func NewBoolFactor(term BoolFactorTerm) *BoolFactor {
	return &BoolFactor{Terms: []BoolFactorTerm{term}}
}

func cloneTerms(terms []BoolTerm) []BoolTerm {
	out := make([]BoolTerm, len(terms))
	for i, t := range terms {
		out[i] = t.Clone()
	}
	return out
}

// reduceTerms reduces every child, returning the new list and whether any
// child changed.
func reduceTerms(terms []BoolTerm) ([]BoolTerm, bool) {
	changed := false
	out := make([]BoolTerm, len(terms))
	for i, t := range terms {
		if r := t.Reduce(); r != nil {
			out[i] = r
			changed = true
			continue
		}
		out[i] = t
	}
	return out, changed
}

func boolTermString(b BoolTerm) string {
	t := &QueryTemplate{}
	b.renderTo(t)
	return t.String()
}

func (o *OrTerm) renderTo(t *QueryTemplate) {
	for i, term := range o.Terms {
		if i > 0 {
			t.append(" OR ")
		}
		term.renderTo(t)
	}
}

// String renders the disjunction.
func (o *OrTerm) String() string { return boolTermString(o) }

// Clone returns a deep copy.
func (o *OrTerm) Clone() BoolTerm { return &OrTerm{Terms: cloneTerms(o.Terms)} }

// Reduce collapses a single-child disjunction to its child.
func (o *OrTerm) Reduce() BoolTerm {
	terms, changed := reduceTerms(o.Terms)
	if len(terms) == 1 {
		return terms[0]
	}
	if changed {
		return &OrTerm{Terms: terms}
	}
	return nil
}

func (o *OrTerm) visitValueExprs(fn func(*ValueExpr)) {
	for _, term := range o.Terms {
		term.visitValueExprs(fn)
	}
}

func (a *AndTerm) renderTo(t *QueryTemplate) {
	for i, term := range a.Terms {
		if i > 0 {
			t.append(" AND ")
		}
		if or, ok := term.(*OrTerm); ok && len(or.Terms) > 1 {
			t.append("(")
			term.renderTo(t)
			t.append(")")
			continue
		}
		term.renderTo(t)
	}
}

// String renders the conjunction.
func (a *AndTerm) String() string { return boolTermString(a) }

// Clone returns a deep copy.
func (a *AndTerm) Clone() BoolTerm { return &AndTerm{Terms: cloneTerms(a.Terms)} }

// Reduce collapses a single-child conjunction to its child.
func (a *AndTerm) Reduce() BoolTerm {
	terms, changed := reduceTerms(a.Terms)
	if len(terms) == 1 {
		return terms[0]
	}
	if changed {
		return &AndTerm{Terms: terms}
	}
	return nil
}

func (a *AndTerm) visitValueExprs(fn func(*ValueExpr)) {
	for _, term := range a.Terms {
		term.visitValueExprs(fn)
	}
}

func (b *BoolFactor) renderTo(t *QueryTemplate) {
	if b.HasNot {
		t.append("NOT ")
	}
	for i, term := range b.Terms {
		if i > 0 {
			t.append(" ")
		}
		term.renderTo(t)
	}
}

// String renders the factor.
func (b *BoolFactor) String() string { return boolTermString(b) }

// Clone returns a deep copy.
func (b *BoolFactor) Clone() BoolTerm {
	out := &BoolFactor{HasNot: b.HasNot, Terms: make([]BoolFactorTerm, len(b.Terms))}
	for i, term := range b.Terms {
		out.Terms[i] = term.cloneTerm()
	}
	return out
}

// Reduce unwraps a lone, non-negated parenthesized term and reduces the
// terms nested in parentheses.
func (b *BoolFactor) Reduce() BoolTerm {
	if !b.HasNot && len(b.Terms) == 1 {
		if btf, ok := b.Terms[0].(*BoolTermFactor); ok {
			if r := btf.Term.Reduce(); r != nil {
				return r
			}
			return btf.Term
		}
	}
	changed := false
	terms := make([]BoolFactorTerm, len(b.Terms))
	for i, term := range b.Terms {
		terms[i] = term
		if btf, ok := term.(*BoolTermFactor); ok {
			if r := btf.Term.Reduce(); r != nil {
				terms[i] = &BoolTermFactor{Term: r}
				changed = true
			}
		}
	}
	if changed {
		return &BoolFactor{HasNot: b.HasNot, Terms: terms}
	}
	return nil
}

func (b *BoolFactor) visitValueExprs(fn func(*ValueExpr)) {
	for _, term := range b.Terms {
		term.visitValueExprs(fn)
	}
}

// Single returns the only term of a non-negated factor.
func (b *BoolFactor) Single() BoolFactorTerm {
	if b.HasNot || len(b.Terms) != 1 {
		return nil
	}
	return b.Terms[0]
}

func (p *CompPredicate) renderTo(t *QueryTemplate) {
	p.Left.renderTo(t)
	t.append(" ")
	t.append(p.Op)
	t.append(" ")
	p.Right.renderTo(t)
}

func (p *CompPredicate) cloneTerm() BoolFactorTerm {
	return &CompPredicate{Left: p.Left.Clone(), Op: p.Op, Right: p.Right.Clone()}
}

func (p *CompPredicate) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Left)
	fn(p.Right)
}

func (p *BetweenPredicate) renderTo(t *QueryTemplate) {
	p.Value.renderTo(t)
	if p.Not {
		t.append(" NOT")
	}
	t.append(" BETWEEN ")
	p.Min.renderTo(t)
	t.append(" AND ")
	p.Max.renderTo(t)
}

func (p *BetweenPredicate) cloneTerm() BoolFactorTerm {
	return &BetweenPredicate{Value: p.Value.Clone(), Not: p.Not, Min: p.Min.Clone(), Max: p.Max.Clone()}
}

func (p *BetweenPredicate) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Value)
	fn(p.Min)
	fn(p.Max)
}

func (p *InPredicate) renderTo(t *QueryTemplate) {
	p.Value.renderTo(t)
	if p.Not {
		t.append(" NOT")
	}
	t.append(" IN (")
	renderParams(t, p.Cands)
	t.append(")")
}

func (p *InPredicate) cloneTerm() BoolFactorTerm {
	return &InPredicate{Value: p.Value.Clone(), Not: p.Not, Cands: cloneParams(p.Cands)}
}

func (p *InPredicate) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Value)
	for _, c := range p.Cands {
		fn(c)
	}
}

func (p *LikePredicate) renderTo(t *QueryTemplate) {
	p.Value.renderTo(t)
	if p.Not {
		t.append(" NOT")
	}
	t.append(" LIKE ")
	p.Pattern.renderTo(t)
}

func (p *LikePredicate) cloneTerm() BoolFactorTerm {
	return &LikePredicate{Value: p.Value.Clone(), Not: p.Not, Pattern: p.Pattern.Clone()}
}

func (p *LikePredicate) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Value)
	fn(p.Pattern)
}

func (p *NullPredicate) renderTo(t *QueryTemplate) {
	p.Value.renderTo(t)
	if p.Not {
		t.append(" IS NOT NULL")
		return
	}
	t.append(" IS NULL")
}

func (p *NullPredicate) cloneTerm() BoolFactorTerm {
	return &NullPredicate{Value: p.Value.Clone(), Not: p.Not}
}

func (p *NullPredicate) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Value)
}

func (p *PassTerm) renderTo(t *QueryTemplate) {
	t.append(p.Text)
}

func (p *PassTerm) cloneTerm() BoolFactorTerm {
	cp := *p
	return &cp
}

func (p *PassTerm) visitValueExprs(fn func(*ValueExpr)) {}

func (p *PassListTerm) renderTo(t *QueryTemplate) {
	t.append("(")
	for i, s := range p.Terms {
		if i > 0 {
			t.append(", ")
		}
		t.append(s)
	}
	t.append(")")
}

func (p *PassListTerm) cloneTerm() BoolFactorTerm {
	return &PassListTerm{Terms: append([]string(nil), p.Terms...)}
}

func (p *PassListTerm) visitValueExprs(fn func(*ValueExpr)) {}

func (p *BoolTermFactor) renderTo(t *QueryTemplate) {
	t.append("(")
	p.Term.renderTo(t)
	t.append(")")
}

func (p *BoolTermFactor) cloneTerm() BoolFactorTerm {
	return &BoolTermFactor{Term: p.Term.Clone()}
}

func (p *BoolTermFactor) visitValueExprs(fn func(*ValueExpr)) {
	p.Term.visitValueExprs(fn)
}

func (p *ValueExprTerm) renderTo(t *QueryTemplate) {
	p.Expr.renderTo(t)
}

func (p *ValueExprTerm) cloneTerm() BoolFactorTerm {
	return &ValueExprTerm{Expr: p.Expr.Clone()}
}

func (p *ValueExprTerm) visitValueExprs(fn func(*ValueExpr)) {
	fn(p.Expr)
}

// VisitValueExprs calls fn for every top-level value expression under b.
func VisitValueExprs(b BoolTerm, fn func(*ValueExpr)) {
	if b == nil {
		return
	}
	b.visitValueExprs(fn)
}

// VisitColumnRefs calls fn for every column reference under b.
func VisitColumnRefs(b BoolTerm, fn func(*ColumnRef)) {
	VisitValueExprs(b, func(v *ValueExpr) { v.VisitColumnRefs(fn) })
}

// RootAndTerm returns the conjunction at the root of a WHERE tree: either
// the lone AndTerm of the root OrTerm, or the root itself when it is one.
func RootAndTerm(b BoolTerm) *AndTerm {
	switch t := b.(type) {
	case *OrTerm:
		if len(t.Terms) == 1 {
			if and, ok := t.Terms[0].(*AndTerm); ok {
				return and
			}
		}
	case *AndTerm:
		return t
	}
	return nil
}

// NormalizeWhere returns b in the canonical OrTerm{AndTerm{...}} shape.
func NormalizeWhere(b BoolTerm) BoolTerm {
	switch t := b.(type) {
	case nil:
		return nil
	case *OrTerm:
		if RootAndTerm(t) != nil {
			return t
		}
		return &OrTerm{Terms: []BoolTerm{&AndTerm{Terms: []BoolTerm{t}}}}
	case *AndTerm:
		return &OrTerm{Terms: []BoolTerm{t}}
	default:
		return &OrTerm{Terms: []BoolTerm{&AndTerm{Terms: []BoolTerm{t}}}}
	}
}

// AddAndTerm conjoins term to the WHERE tree w and returns the new root.
func AddAndTerm(w BoolTerm, term BoolTerm) BoolTerm {
	if w == nil {
		return NormalizeWhere(term)
	}
	root := NormalizeWhere(w)
	and := RootAndTerm(root)
	and.Terms = append(and.Terms, term)
	return root
}
