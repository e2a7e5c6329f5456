package lesson

import "strings"

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Topic    *string
	Location *string
	Price    *float64
	Space    *int
	Image    *string
}

func (p Patch) Empty() bool {
	return p.Topic == nil && p.Location == nil && p.Price == nil && p.Space == nil && p.Image == nil
}

// Validate applies the same rules as Lesson.Validate to the fields that are present.
func (p Patch) Validate() error {
	if p.Empty() {
		return invalid("patch", "has no fields")
	}
	if p.Topic != nil && strings.TrimSpace(*p.Topic) == "" {
		return invalid("topic", "must not be empty")
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		return invalid("location", "must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		return invalid("price", "must be zero or greater")
	}
	if p.Space != nil && *p.Space < 0 {
		return invalid("space", "must be zero or greater")
	}
	if p.Image != nil && *p.Image == "" {
		return invalid("image", "must not be empty")
	}
	return nil
}

func (p Patch) Apply(l *Lesson) {
	if p.Topic != nil {
		l.Topic = strings.TrimSpace(*p.Topic)
	}
	if p.Location != nil {
		l.Location = strings.TrimSpace(*p.Location)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Space != nil {
		l.Space = *p.Space
	}
	if p.Image != nil {
		l.Image = *p.Image
	}
}
