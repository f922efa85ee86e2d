package types

import "io/fs"

// Mode constants for reconciled files. The requested mode is always
// masked with SettableMask before comparison or chmod: only the
// permission bits plus setuid/setgid/sticky are ours to set, never the
// type bits.
const (
	Executable    fs.FileMode = 0o777
	NonExecutable fs.FileMode = 0o666
	SettableMask  fs.FileMode = 0o7777
)

// SettableMode masks a raw stat mode down to the bits an owner can set.
func SettableMode(m fs.FileMode) fs.FileMode {
	return m.Perm() | m&(fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky)
}

// ContentKind discriminates the three desired-content cases of a file
// record.
type ContentKind int

const (
	// ContentAbsent means the file must not exist.
	ContentAbsent ContentKind = iota

	// ContentModeOnly means the file must exist with the requested
	// mode, but its content is not managed or compared.
	ContentModeOnly

	// ContentExact means the file must contain exactly the given
	// bytes and carry the requested mode.
	ContentExact
)

func (k ContentKind) String() string {
	switch k {
	case ContentAbsent:
		return "absent"
	case ContentModeOnly:
		return "mode-only"
	case ContentExact:
		return "exact"
	default:
		return "unknown"
	}
}

// Content is the tri-state desired content of a file record, modeled
// as an explicit sum so Absent, ModeOnly and Exact can never be
// confused at a call site.
type Content struct {
	kind  ContentKind
	bytes []byte
}

// AbsentContent declares that the file must not exist.
func AbsentContent() Content {
	return Content{kind: ContentAbsent}
}

// ModeOnlyContent declares that the file must exist with the requested
// mode, content untouched.
func ModeOnlyContent() Content {
	return Content{kind: ContentModeOnly}
}

// ExactContent declares that the file must contain exactly data.
func ExactContent(data []byte) Content {
	return Content{kind: ContentExact, bytes: data}
}

// Kind returns the discriminator.
func (c Content) Kind() ContentKind {
	return c.kind
}

// Bytes returns the exact desired content. It is only meaningful when
// Kind is ContentExact.
func (c Content) Bytes() []byte {
	return c.bytes
}
