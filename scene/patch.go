package scene

// Patch is a partial set of layer attributes. Nil fields are left as they
// are when the patch is applied. Its field names match those of TextLayer,
// so a scene document layer decodes into one.
type Patch struct {
	Content       *string    `yaml:"text,omitempty" toml:"text,omitempty" json:"text,omitempty"`
	X             *float64   `yaml:"x,omitempty" toml:"x,omitempty" json:"x,omitempty"`
	Y             *float64   `yaml:"y,omitempty" toml:"y,omitempty" json:"y,omitempty"`
	FontSize      *float64   `yaml:"fontSize,omitempty" toml:"fontSize,omitempty" json:"fontSize,omitempty"`
	Opacity       *float64   `yaml:"opacity,omitempty" toml:"opacity,omitempty" json:"opacity,omitempty"`
	FontFamily    *string    `yaml:"font,omitempty" toml:"font,omitempty" json:"font,omitempty"`
	Color         *string    `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"`
	FontWeight    *int       `yaml:"fontWeight,omitempty" toml:"fontWeight,omitempty" json:"fontWeight,omitempty"`
	LetterSpacing *float64   `yaml:"letterSpacing,omitempty" toml:"letterSpacing,omitempty" json:"letterSpacing,omitempty"`
	Rotation      *float64   `yaml:"rotation,omitempty" toml:"rotation,omitempty" json:"rotation,omitempty"`
	RotationY     *float64   `yaml:"rotationY,omitempty" toml:"rotationY,omitempty" json:"rotationY,omitempty"`
	Transform     *Transform `yaml:"textTransform,omitempty" toml:"textTransform,omitempty" json:"textTransform,omitempty"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building patches.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i, for building patches.
func Int(i int) *int { return &i }

// Move returns a patch that only changes the position.
func Move(x, y float64) Patch {
	return Patch{X: Float(x), Y: Float(y)}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// PositionOnly reports whether the patch touches X and/or Y and nothing else.
func (p Patch) PositionOnly() bool {
	if p.X == nil && p.Y == nil {
		return false
	}
	rest := p
	rest.X, rest.Y = nil, nil
	return rest.Empty()
}

// Apply merges the patch into l and returns the result. Numeric values are
// clamped to their editing ranges. The layer ID is never changed.
func (p Patch) Apply(l TextLayer) TextLayer {
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.X != nil {
		l.X = clamp(*p.X, 0, 100)
	}
	if p.Y != nil {
		l.Y = clamp(*p.Y, 0, 100)
	}
	if p.FontSize != nil {
		l.FontSize = clamp(*p.FontSize, MinFontSize, MaxFontSize)
	}
	if p.Opacity != nil {
		l.Opacity = clamp(*p.Opacity, 0, 1)
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.FontWeight != nil {
		l.FontWeight = int(clamp(float64(*p.FontWeight), MinWeight, MaxWeight))
	}
	if p.LetterSpacing != nil {
		l.LetterSpacing = clamp(*p.LetterSpacing, MinLetterSpacing, MaxLetterSpacing)
	}
	if p.Rotation != nil {
		l.Rotation = clamp(*p.Rotation, -MaxRotation, MaxRotation)
	}
	if p.RotationY != nil {
		ry := clamp(*p.RotationY, -MaxRotationY, MaxRotationY)
		l.RotationY = &ry
	}
	if p.Transform != nil {
		l.Transform = *p.Transform
	}
	return l
}
