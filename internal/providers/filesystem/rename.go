package filesystem

import "os"

func renameChecked(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return NewPathError("rename", to, ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return Classify("rename", to, err)
	}
	return Classify("rename", from, os.Rename(from, to))
}
