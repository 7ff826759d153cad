package geom

// Rect is an axis-aligned rectangle, Min inclusive and Max exclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Viewport returns the rectangle (0,0)-(w,h).
func Viewport(w, h float64) Rect {
	return Rect{MaxX: w, MaxY: h}
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (r Rect) Center() Vec2 {
	return Vec2{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Expand grows the rectangle by m on every side. Negative m shrinks it.
func (r Rect) Expand(m float64) Rect {
	return Rect{r.MinX - m, r.MinY - m, r.MaxX + m, r.MaxY + m}
}

// Clamp moves p to the nearest point inside r.
func (r Rect) Clamp(p Vec2) Vec2 {
	if p.X < r.MinX {
		p.X = r.MinX
	} else if p.X > r.MaxX {
		p.X = r.MaxX
	}
	if p.Y < r.MinY {
		p.Y = r.MinY
	} else if p.Y > r.MaxY {
		p.Y = r.MaxY
	}
	return p
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}
