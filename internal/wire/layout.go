package wire

import "fmt"

// AnyVersion as MaxVersion leaves a field unbounded above.
const AnyVersion = ^uint32(0)

// Field is one member of a versioned record. It is present for versions in
// [MinVersion, MaxVersion].
type Field[T any] struct {
	Name       string
	MinVersion uint32
	MaxVersion uint32
	Decode     func(d *Decoder, v *T) error
	Encode     func(e *Encoder, v *T) error
}

// Present reports whether the field is part of the record at version.
func (f Field[T]) Present(version uint32) bool {
	return version >= f.MinVersion && version <= f.MaxVersion
}

// Layout is an ordered table of versioned fields. Fields are visited in
// table order; absent fields consume and produce no bytes.
type Layout[T any] []Field[T]

// Decode reads every field present at version into v.
func (l Layout[T]) Decode(d *Decoder, version uint32, v *T) error {
	for _, f := range l {
		if !f.Present(version) {
			continue
		}
		if err := f.Decode(d, v); err != nil {
			return fmt.Errorf("decode %s: %w", f.Name, err)
		}
	}
	return nil
}

// Encode writes every field present at version from v.
func (l Layout[T]) Encode(e *Encoder, version uint32, v *T) error {
	for _, f := range l {
		if !f.Present(version) {
			continue
		}
		if err := f.Encode(e, v); err != nil {
			return fmt.Errorf("encode %s: %w", f.Name, err)
		}
	}
	return nil
}

// Fields lists the names of the fields present at version, in byte order.
func (l Layout[T]) Fields(version uint32) []string {
	var names []string
	for _, f := range l {
		if f.Present(version) {
			names = append(names, f.Name)
		}
	}
	return names
}
