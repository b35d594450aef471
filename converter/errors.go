package converter

import (
	"fmt"

	"github.com/zoobzio/shapepack/shape"
)

func errOpaqueWithoutConverter(s *shape.Shape) error {
	return fmt.Errorf("shape %q has kind Opaque and no attached converter factory", s.Name)
}

func errUnsupportedKind(s *shape.Shape) error {
	return fmt.Errorf("shape %q has unsupported kind %s", s.Name, s.Kind)
}

func errNoDuckField(s *shape.Shape) error {
	return fmt.Errorf("duck-typed union case %q has no member to discriminate on", s.Name)
}

func errAmbiguousDuckField(field string) error {
	return fmt.Errorf("duck-typed union field %q is shared by more than one case", field)
}
