/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"fmt"
	"strings"

	"github.com/radondb/qplan/sphgeom"

	"github.com/shopspring/decimal"
)

// AreaRestrictor is a spatial constraint on the partitioning columns.
type AreaRestrictor interface {
	// Region returns the sky region the restrictor covers.
	Region() (sphgeom.Region, error)
	// Predicate returns the scisql test of (lon, lat) against the area.
	Predicate(table, lonCol, latCol string) *BoolFactor
	// Params returns the literal parameters as written.
	Params() []string
	String() string
}

type areaRestrictor struct {
	kind   string
	params []string
	values []float64
}

// AreaRestrictorBox is qserv_areaspec_box(lonMin, latMin, lonMax, latMax).
type AreaRestrictorBox struct{ areaRestrictor }

// AreaRestrictorCircle is qserv_areaspec_circle(lon, lat, radius).
type AreaRestrictorCircle struct{ areaRestrictor }

// AreaRestrictorEllipse is qserv_areaspec_ellipse(lon, lat, semiMajor, semiMinor, posAngle).
type AreaRestrictorEllipse struct{ areaRestrictor }

// AreaRestrictorPoly is qserv_areaspec_poly(lon1, lat1, lon2, lat2, ...).
type AreaRestrictorPoly struct{ areaRestrictor }

var (
	_ AreaRestrictor = &AreaRestrictorBox{}
	_ AreaRestrictor = &AreaRestrictorCircle{}
	_ AreaRestrictor = &AreaRestrictorEllipse{}
	_ AreaRestrictor = &AreaRestrictorPoly{}
)

const (
	areaBox     = "box"
	areaCircle  = "circle"
	areaEllipse = "ellipse"
	areaPoly    = "poly"
)

var (
	areaSpecFuncs = map[string]string{
		"qserv_areaspec_box":     areaBox,
		"qserv_areaspec_circle":  areaCircle,
		"qserv_areaspec_ellipse": areaEllipse,
		"qserv_areaspec_poly":    areaPoly,
	}
	sciSQLFuncs = map[string]string{
		"scisql_s2ptinbox":     areaBox,
		"scisql_s2ptincircle":  areaCircle,
		"scisql_s2ptinellipse": areaEllipse,
		"scisql_s2ptincpoly":   areaPoly,
	}
	sciSQLNames = map[string]string{
		areaBox:     "scisql_s2PtInBox",
		areaCircle:  "scisql_s2PtInCircle",
		areaEllipse: "scisql_s2PtInEllipse",
		areaPoly:    "scisql_s2PtInCPoly",
	}
)

// IsAreaSpecFunc reports whether name is a qserv_areaspec_* pseudo function.
func IsAreaSpecFunc(name string) bool {
	_, ok := areaSpecFuncs[strings.ToLower(name)]
	return ok
}

// IsSciSQLAreaFunc reports whether name is a scisql_s2PtIn* function.
func IsSciSQLAreaFunc(name string) bool {
	_, ok := sciSQLFuncs[strings.ToLower(name)]
	return ok
}

// ParseNumber parses a numeric SQL literal.
func ParseNumber(lit string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(lit))
	if err != nil {
		return 0, NewAnalysisError("invalid numeric literal '%s'", lit)
	}
	f, _ := d.Float64()
	return f, nil
}

// NewAreaRestrictor builds a restrictor from a qserv_areaspec_* or
// scisql_s2PtIn* function name and its literal parameters; for the scisql
// form the parameters exclude the two column arguments.
func NewAreaRestrictor(funcName string, params []string) (AreaRestrictor, error) {
	name := strings.ToLower(funcName)
	kind, ok := areaSpecFuncs[name]
	if !ok {
		if kind, ok = sciSQLFuncs[name]; !ok {
			return nil, NewAnalysisError("unknown area restrictor %s", funcName)
		}
	}
	values := make([]float64, len(params))
	for i, p := range params {
		v, err := ParseNumber(p)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	base := areaRestrictor{kind: kind, params: append([]string(nil), params...), values: values}
	switch kind {
	case areaBox:
		if len(params) != 4 {
			return nil, NewAnalysisError("%s requires 4 parameters, got %d", funcName, len(params))
		}
		return &AreaRestrictorBox{base}, nil
	case areaCircle:
		if len(params) != 3 {
			return nil, NewAnalysisError("%s requires 3 parameters, got %d", funcName, len(params))
		}
		return &AreaRestrictorCircle{base}, nil
	case areaEllipse:
		if len(params) != 5 {
			return nil, NewAnalysisError("%s requires 5 parameters, got %d", funcName, len(params))
		}
		return &AreaRestrictorEllipse{base}, nil
	default:
		if len(params) < 6 || len(params)%2 != 0 {
			return nil, NewAnalysisError("%s requires an even number of at least 6 parameters, got %d", funcName, len(params))
		}
		return &AreaRestrictorPoly{base}, nil
	}
}

func (a *areaRestrictor) Params() []string {
	return a.params
}

func (a *areaRestrictor) String() string {
	return fmt.Sprintf("qserv_areaspec_%s(%s)", a.kind, strings.Join(a.params, ", "))
}

func (a *areaRestrictor) Predicate(table, lonCol, latCol string) *BoolFactor {
	params := []*ValueExpr{
		NewColumnRefExpr("", table, lonCol),
		NewColumnRefExpr("", table, latCol),
	}
	for _, p := range a.params {
		params = append(params, NewConstExpr(p))
	}
	fn := NewFactorExpr(&FuncExpr{Name: sciSQLNames[a.kind], Params: params})
	return NewBoolFactor(&CompPredicate{Left: fn, Op: "=", Right: NewConstExpr("1")})
}

func (a *areaRestrictor) wrap(r sphgeom.Region, err error) (sphgeom.Region, error) {
	if err != nil {
		return nil, NewAnalysisError("invalid %s: %v", a.String(), err)
	}
	return r, nil
}

// Region implements AreaRestrictor.
func (b *AreaRestrictorBox) Region() (sphgeom.Region, error) {
	v := b.values
	return b.wrap(sphgeom.NewBox(v[0], v[1], v[2], v[3]))
}

// Region implements AreaRestrictor.
func (c *AreaRestrictorCircle) Region() (sphgeom.Region, error) {
	v := c.values
	return c.wrap(sphgeom.NewCircle(v[0], v[1], v[2]))
}

// Region implements AreaRestrictor.
func (e *AreaRestrictorEllipse) Region() (sphgeom.Region, error) {
	v := e.values
	return e.wrap(sphgeom.NewEllipse(v[0], v[1], v[2], v[3], v[4]))
}

// Region implements AreaRestrictor.
func (p *AreaRestrictorPoly) Region() (sphgeom.Region, error) {
	return p.wrap(sphgeom.NewConvexPolygon(p.values))
}
