package model

// VisibilityKind is the tag of a Visibility.
type VisibilityKind int

const (
	VisibilityPublic VisibilityKind = iota
	VisibilityPrivate
	VisibilityProtected
	VisibilityCrate
	VisibilityRestricted
)

// Visibility is the declared visibility of an entity. The zero value is Public.
type Visibility struct {
	Kind VisibilityKind
	// Path is the restriction of a Restricted visibility, e.g. "in crate::foo" or "super".
	Path string
}

var (
	Public    = Visibility{Kind: VisibilityPublic}
	Private   = Visibility{Kind: VisibilityPrivate}
	Protected = Visibility{Kind: VisibilityProtected}
	Crate     = Visibility{Kind: VisibilityCrate}
)

// Restricted returns a visibility limited to path.
func Restricted(path string) Visibility {
	return Visibility{Kind: VisibilityRestricted, Path: path}
}

// IsPublic reports whether v is Public.
func (v Visibility) IsPublic() bool {
	return v.Kind == VisibilityPublic
}

// AsStr projects v back to the source keyword of lang. It returns "" when the
// language has no keyword for it.
func (v Visibility) AsStr(lang LanguageType) string {
	switch lang {
	case Rust:
		switch v.Kind {
		case VisibilityPublic:
			return "pub"
		case VisibilityCrate:
			return "pub(crate)"
		case VisibilityRestricted:
			return "pub(" + v.Path + ")"
		}
	case TypeScript, Cpp, C:
		switch v.Kind {
		case VisibilityPrivate:
			return "private"
		case VisibilityProtected:
			return "protected"
		}
	}
	return ""
}

func (v Visibility) String() string {
	switch v.Kind {
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	case VisibilityCrate:
		return "crate"
	case VisibilityRestricted:
		return "restricted(" + v.Path + ")"
	default:
		return "public"
	}
}
