//go:build !linux

package filesystem

func renameNoReplace(from, to string) error {
	return renameChecked(from, to)
}
