/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package sphgeom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
)

// Region is an area of the celestial sphere, coordinates are in degrees.
type Region interface {
	// IntersectsRect reports whether the region may intersect r. False
	// positives are allowed, false negatives are not.
	IntersectsRect(r s2.Rect) bool
	String() string
}

// Box is a longitude/latitude box. LonMax < LonMin wraps through 0.
type Box struct {
	rect s2.Rect
}

// Circle is a spherical cap.
type Circle struct {
	center s2.LatLng
	radius s1.Angle
}

// Ellipse is bounded by the circle of its semi-major axis.
type Ellipse struct {
	circle    *Circle
	semiMinor float64
	posAngle  float64
}

// ConvexPolygon is bounded by the rectangle of its vertices.
type ConvexPolygon struct {
	loop *s2.Loop
	rect s2.Rect
}

var (
	_ Region = &Box{}
	_ Region = &Circle{}
	_ Region = &Ellipse{}
	_ Region = &ConvexPolygon{}
)

func degToRad(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// normLonRad maps a longitude in degrees into (-pi, pi].
func normLonRad(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d > 180.0 {
		d -= 360.0
	}
	return degToRad(d)
}

// LonInterval converts [lo, hi] degrees into an s1 interval.
func LonInterval(lo, hi float64) s1.Interval {
	if hi-lo >= 360.0 {
		return s1.FullInterval()
	}
	return s1.IntervalFromEndpoints(normLonRad(lo), normLonRad(hi))
}

// LatInterval converts [lo, hi] degrees into an r1 interval of radians.
func LatInterval(lo, hi float64) r1.Interval {
	return r1.Interval{Lo: degToRad(lo), Hi: degToRad(hi)}
}

// RectFromDegrees builds a lon/lat rectangle.
func RectFromDegrees(lonMin, latMin, lonMax, latMax float64) s2.Rect {
	return s2.Rect{Lat: LatInterval(latMin, latMax), Lng: LonInterval(lonMin, lonMax)}
}

func checkLat(lat float64) error {
	if lat < -90.0 || lat > 90.0 || math.IsNaN(lat) {
		return errors.Errorf("sphgeom.latitude[%v].out.of.range", lat)
	}
	return nil
}

// NewBox creates a box, longitudes wrap when lonMax < lonMin.
func NewBox(lonMin, latMin, lonMax, latMax float64) (*Box, error) {
	if err := checkLat(latMin); err != nil {
		return nil, err
	}
	if err := checkLat(latMax); err != nil {
		return nil, err
	}
	if latMin > latMax {
		return nil, errors.Errorf("sphgeom.box.latmin[%v].greater.than.latmax[%v]", latMin, latMax)
	}
	return &Box{rect: RectFromDegrees(lonMin, latMin, lonMax, latMax)}, nil
}

// IntersectsRect implements Region.
func (b *Box) IntersectsRect(r s2.Rect) bool {
	return b.rect.Intersects(r)
}

// Rect returns the box as an s2 rectangle.
func (b *Box) Rect() s2.Rect {
	return b.rect
}

func (b *Box) String() string {
	return fmt.Sprintf("Box(%v)", b.rect)
}

// NewCircle creates a circle of radius degrees around (lon, lat).
func NewCircle(lon, lat, radius float64) (*Circle, error) {
	if err := checkLat(lat); err != nil {
		return nil, err
	}
	if radius < 0 || radius > 180.0 {
		return nil, errors.Errorf("sphgeom.circle.radius[%v].out.of.range", radius)
	}
	return &Circle{
		center: s2.LatLngFromDegrees(lat, lon).Normalized(),
		radius: s1.Angle(radius) * s1.Degree,
	}, nil
}

// IntersectsRect implements Region.
func (c *Circle) IntersectsRect(r s2.Rect) bool {
	if r.IsEmpty() {
		return false
	}
	return r.DistanceToLatLng(c.center) <= c.radius
}

// Cap returns the circle as an s2 cap.
func (c *Circle) Cap() s2.Cap {
	return s2.CapFromCenterAngle(s2.PointFromLatLng(c.center), c.radius)
}

func (c *Circle) String() string {
	return fmt.Sprintf("Circle(%v, %v)", c.center, c.radius.Degrees())
}

// NewEllipse creates an ellipse from axes in arcseconds and a position
// angle in degrees.
func NewEllipse(lon, lat, semiMajorArcsec, semiMinorArcsec, posAngle float64) (*Ellipse, error) {
	if semiMinorArcsec < 0 || semiMinorArcsec > semiMajorArcsec {
		return nil, errors.Errorf("sphgeom.ellipse.axes[%v,%v].invalid", semiMajorArcsec, semiMinorArcsec)
	}
	circle, err := NewCircle(lon, lat, semiMajorArcsec/3600.0)
	if err != nil {
		return nil, err
	}
	return &Ellipse{circle: circle, semiMinor: semiMinorArcsec, posAngle: posAngle}, nil
}

// IntersectsRect implements Region.
func (e *Ellipse) IntersectsRect(r s2.Rect) bool {
	return e.circle.IntersectsRect(r)
}

func (e *Ellipse) String() string {
	return fmt.Sprintf("Ellipse(%v, %v, %v, %v)", e.circle.center, e.circle.radius.Degrees()*3600.0, e.semiMinor, e.posAngle)
}

// NewConvexPolygon creates a polygon from lon1, lat1, lon2, lat2, ...
func NewConvexPolygon(coords []float64) (*ConvexPolygon, error) {
	if len(coords) < 6 || len(coords)%2 != 0 {
		return nil, errors.Errorf("sphgeom.polygon.needs.at.least.3.vertices.got[%d].coords", len(coords))
	}
	pts := make([]s2.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		if err := checkLat(coords[i+1]); err != nil {
			return nil, err
		}
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(coords[i+1], coords[i]).Normalized()))
	}
	loop := s2.LoopFromPoints(pts)
	// Vertices given clockwise describe the complement.
	if loop.Area() > 2*math.Pi {
		loop.Invert()
	}
	return &ConvexPolygon{loop: loop, rect: loop.RectBound()}, nil
}

// IntersectsRect implements Region.
func (p *ConvexPolygon) IntersectsRect(r s2.Rect) bool {
	return p.rect.Intersects(r)
}

func (p *ConvexPolygon) String() string {
	return fmt.Sprintf("ConvexPolygon(%d vertices, %v)", p.loop.NumVertices(), p.rect)
}
