package renamer

import (
	"io/fs"
	"os"
)

// fsysLister lists the real file system for runners whose mover is a fake.
type fsysLister struct{}

func (fsysLister) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}
