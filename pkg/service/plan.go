package service

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/reconciler"
	"github.com/weykent/runitsv/pkg/records"
	"github.com/weykent/runitsv/pkg/types"
)

// Validate rejects incompatible option combinations. It is called by
// BuildPlan before any filesystem access; the directory-availability
// checks happen later, during directory selection.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.New(errors.ErrConfigInvalid, "name is required")
	}
	if d.Runscript == "" {
		return errors.New(errors.ErrConfigInvalid, "runscript is required")
	}
	switch d.State {
	case StatePresent, StateAbsent, StateDown:
	default:
		return errors.Newf(errors.ErrConfigInvalid, "state must be present, absent or down, got %q", d.State)
	}
	switch d.LsbService {
	case "", StatePresent, StateAbsent:
	default:
		return errors.Newf(errors.ErrConfigInvalid, "lsb-service must be present or absent, got %q", d.LsbService)
	}
	if d.LogSuperviseLink != "" && d.LogRunscript == "" {
		return errors.New(errors.ErrConfigInvalid, "log-supervise-link must be specified with log-runscript")
	}
	if d.State == StateAbsent && d.LsbService == StatePresent {
		return errors.New(errors.ErrConfigInvalid, "lsb-service can't be set to present if state=absent")
	}
	if d.Umask < 0 || d.Umask > 0o777 {
		return errors.Newf(errors.ErrConfigInvalid, "umask out of range: %#o", d.Umask)
	}
	return nil
}

// BuildPlan validates the definition, selects the parent directories,
// and constructs the ordered record list. Construction order is the
// commit order the reconciler preserves.
func (d *Definition) BuildPlan(fsys types.FS) (*reconciler.Plan, error) {
	logger := logging.GetLogger("service")

	if err := d.Validate(); err != nil {
		return nil, err
	}

	svRoot, err := firstDirectoryOrFail(fsys, "sv-directory", d.SvDirectory)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := firstDirectoryOrFail(fsys, "service-directory", d.ServiceDirectory)
	if err != nil {
		return nil, err
	}

	sv := func(parts ...string) string {
		return filepath.Join(append([]string{svRoot, d.Name}, parts...)...)
	}
	umask := fs.FileMode(d.Umask)
	exeMode := types.Executable &^ umask
	nexeMode := types.NonExecutable &^ umask

	var recs []types.Record
	cleanup := []string{sv()}

	recs = append(recs, records.NewFile(sv("run"), exeMode, types.ExactContent([]byte(d.Runscript))))

	if d.LogRunscript == "" {
		recs = append(recs, records.RemoveTree(sv("log")))
	} else {
		recs = append(recs, records.NewFile(sv("log", "run"), exeMode, types.ExactContent([]byte(d.LogRunscript))))
		cleanup = append(cleanup, sv("log"))
	}

	for _, name := range sortedKeys(d.ExtraFiles) {
		recs = append(recs, records.NewFile(sv(name), nexeMode, types.ExactContent([]byte(d.ExtraFiles[name]))))
	}
	for _, name := range sortedKeys(d.ExtraScripts) {
		recs = append(recs, records.NewFile(sv(name), exeMode, types.ExactContent([]byte(d.ExtraScripts[name]))))
	}

	if d.Envdir == nil {
		recs = append(recs, records.RemoveTree(sv("env")))
	} else {
		for _, key := range sortedKeys(d.Envdir) {
			recs = append(recs, records.NewFile(sv("env", key), nexeMode, types.ExactContent([]byte(d.Envdir[key]))))
		}
		cleanup = append(cleanup, sv("env"))
	}

	downContent := types.AbsentContent()
	if d.State == StateDown {
		downContent = types.ExactContent(nil)
	}
	recs = append(recs, records.NewFile(sv("down"), nexeMode, downContent))

	// An unset supervise link tolerates a real supervise directory
	// left behind by runsv.
	recs = append(recs, records.NewLink(sv("supervise"), d.SuperviseLink, d.SuperviseLink == ""))
	recs = append(recs, records.NewLink(sv("log", "supervise"), d.LogSuperviseLink, d.LogSuperviseLink == ""))

	registrationTarget := sv()
	if d.State == StateAbsent {
		registrationTarget = ""
	}
	recs = append(recs, records.NewLink(filepath.Join(serviceRoot, d.Name), registrationTarget, false))

	if d.State != StateAbsent {
		initDRoot, err := FirstDirectory(fsys, d.InitDDirectory)
		if err != nil {
			return nil, err
		}
		if initDRoot == "" {
			if d.LsbService != "" {
				return nil, errors.Newf(errors.ErrNoDirectory,
					"no extant directory found for init-d-directory and lsb-service=%s", d.LsbService)
			}
		} else {
			lsbTarget := LSBTarget
			if d.LsbService == StateAbsent {
				lsbTarget = ""
			}
			recs = append(recs, records.NewLink(filepath.Join(initDRoot, d.Name), lsbTarget, false))
		}
	}

	logger.Debug().
		Str("service", d.Name).
		Str("sv_root", svRoot).
		Str("service_root", serviceRoot).
		Int("records", len(recs)).
		Msg("Plan built")

	return &reconciler.Plan{Records: recs, CleanupDirs: cleanup}, nil
}

func firstDirectoryOrFail(fsys types.FS, option string, candidates []string) (string, error) {
	dir, err := FirstDirectory(fsys, candidates)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", errors.Newf(errors.ErrNoDirectory,
			"no extant directory found for %s out of %v", option, candidates)
	}
	return dir, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
