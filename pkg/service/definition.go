package service

// Service states.
const (
	StatePresent = "present"
	StateAbsent  = "absent"
	StateDown    = "down"
)

// LSBTarget is the fixed target of the init.d integration link; runit
// ships an LSB-compatible sv shim at this path.
const LSBTarget = "/usr/bin/sv"

// Default candidate directories, matching the runit conventions.
var (
	DefaultSvDirectories      = []string{"/etc/sv"}
	DefaultServiceDirectories = []string{"/service", "/etc/service"}
	DefaultInitDDirectories   = []string{"/etc/init.d"}
)

// DefaultUmask is applied when the definition does not set one.
const DefaultUmask = 0o022

// Definition is a resolved service definition, as supplied by the
// config loader or constructed directly by library callers.
type Definition struct {
	// Name derives the service subdirectory name. Required.
	Name string `koanf:"name" json:"name" toml:"name" yaml:"name"`

	// Runscript is the content of the primary run script. Required.
	Runscript string `koanf:"runscript" json:"runscript" toml:"runscript" yaml:"runscript"`

	// LogRunscript is the content of log/run. Empty means no log
	// service: any existing log subtree is purged.
	LogRunscript string `koanf:"log-runscript" json:"log-runscript,omitempty" toml:"log-runscript,omitempty" yaml:"log-runscript,omitempty"`

	// SuperviseLink and LogSuperviseLink are escape-hatch symlink
	// targets for the supervise directories. Empty means the link is
	// not managed as a link; an existing supervise directory is
	// tolerated. LogSuperviseLink requires LogRunscript.
	SuperviseLink    string `koanf:"supervise-link" json:"supervise-link,omitempty" toml:"supervise-link,omitempty" yaml:"supervise-link,omitempty"`
	LogSuperviseLink string `koanf:"log-supervise-link" json:"log-supervise-link,omitempty" toml:"log-supervise-link,omitempty" yaml:"log-supervise-link,omitempty"`

	// State is one of present, absent, down. Defaults to present.
	State string `koanf:"state" json:"state" toml:"state" yaml:"state"`

	// ExtraFiles are written non-executable into the service
	// directory; ExtraScripts executable. Keys are names relative to
	// the service directory.
	ExtraFiles   map[string]string `koanf:"extra-files" json:"extra-files,omitempty" toml:"extra-files,omitempty" yaml:"extra-files,omitempty"`
	ExtraScripts map[string]string `koanf:"extra-scripts" json:"extra-scripts,omitempty" toml:"extra-scripts,omitempty" yaml:"extra-scripts,omitempty"`

	// Envdir holds environment variables written as files under env/.
	// A nil map means no envdir is managed and any existing env
	// subtree is purged; a non-nil empty map manages an empty envdir.
	Envdir map[string]string `koanf:"envdir" json:"envdir,omitempty" toml:"envdir,omitempty" yaml:"envdir,omitempty"`

	// LsbService controls the init.d integration link: "present",
	// "absent", or empty for the default behavior (create the link
	// when an init.d directory exists).
	LsbService string `koanf:"lsb-service" json:"lsb-service,omitempty" toml:"lsb-service,omitempty" yaml:"lsb-service,omitempty"`

	// Umask masks the executable (0777) and non-executable (0666)
	// base modes before records are built.
	Umask int `koanf:"umask" json:"umask" toml:"umask" yaml:"umask"`

	// Candidate parent directories; the first existing real
	// directory in each list is selected.
	SvDirectory      []string `koanf:"sv-directory" json:"sv-directory" toml:"sv-directory" yaml:"sv-directory"`
	ServiceDirectory []string `koanf:"service-directory" json:"service-directory" toml:"service-directory" yaml:"service-directory"`
	InitDDirectory   []string `koanf:"init-d-directory" json:"init-d-directory" toml:"init-d-directory" yaml:"init-d-directory"`
}

// NewDefinition returns a definition with defaults applied.
func NewDefinition(name, runscript string) *Definition {
	return &Definition{
		Name:             name,
		Runscript:        runscript,
		State:            StatePresent,
		Umask:            DefaultUmask,
		SvDirectory:      DefaultSvDirectories,
		ServiceDirectory: DefaultServiceDirectories,
		InitDDirectory:   DefaultInitDDirectories,
	}
}
