// This software is distributed under the MIT License.
//
// You should have received a copy of the MIT License along with this program.
// If not, see <https://opensource.org/licenses/MIT>

package realpath

import (
	"io/fs"
	"os"
	"testing"
	"time"
)

type fakeInfo struct {
	name string
	mode os.FileMode
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() os.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() interface{}   { return nil }

// fakeOS holds directories and symlinks keyed by absolute path.
type fakeOS struct {
	wd    string
	dirs  map[string]bool
	links map[string]string
}

func (f *fakeOS) Getwd() string {
	return f.wd
}

func (f *fakeOS) Lstat(name string) (os.FileInfo, error) {
	if _, ok := f.links[name]; ok {
		return fakeInfo{name: name, mode: os.ModeSymlink | 0777}, nil
	}
	if f.dirs[name] {
		return fakeInfo{name: name, mode: os.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrNotExist}
}

func (f *fakeOS) Readlink(name string) (string, error) {
	return f.links[name], nil
}

func TestRealpath(t *testing.T) {
	fakeFs := &fakeOS{
		wd: "/home",
		dirs: map[string]bool{
			"/home":     true,
			"/var":      true,
			"/var/data": true,
		},
		links: map[string]string{
			"/home/data": "/var/data",
			"/home/rel":  "../var",
			"/loop":      "/loop",
		},
	}

	cases := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"root":           {in: "/", want: "/"},
		"empty is wd":    {in: "", want: "/home"},
		"relative":       {in: "data", want: "/var/data"},
		"absolute link":  {in: "/home/data", want: "/var/data"},
		"relative link":  {in: "/home/rel/data", want: "/var/data"},
		"dot components": {in: "/home/./../var/", want: "/var"},
		"missing":        {in: "/nope", wantErr: true},
		"loop":           {in: "/loop", wantErr: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := Realpath(fakeFs, tc.in)
			switch {
			case tc.wantErr && err == nil:
				t.Fatalf("expected error, got %q", got)
			case !tc.wantErr && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case got != tc.want:
				t.Fatalf("Realpath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
