package vos

import (
	"errors"
	"io/fs"

	"github.com/josephlewis42/vsh/third_party/realpath"
	"github.com/spf13/afero"
)

// Realpath resolves name against the working directory and replaces every
// symbolic link along the way with its target. Filesystems that can't
// report links are treated as having none.
func Realpath(env interface {
	WorkingDirEnv
	FSEnv
}, name string) (string, error) {
	return realpath.Realpath(&realpathOs{getwd: env.Getwd, base: env.FS()}, name)
}

type realpathOs struct {
	getwd func() string
	base  afero.Fs
}

var _ realpath.OS = (*realpathOs)(nil)

func (r *realpathOs) Getwd() string {
	return r.getwd()
}

func (r *realpathOs) Lstat(name string) (fs.FileInfo, error) {
	if lstater, ok := r.base.(afero.Lstater); ok {
		stat, _, err := lstater.LstatIfPossible(name)
		return stat, err
	}
	return r.base.Stat(name)
}

func (r *realpathOs) Readlink(name string) (string, error) {
	if reader, ok := r.base.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", errors.New("not a link")
}
