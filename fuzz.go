package chtl

import (
	"io/fs"

	"github.com/robfig/chtl/chtlhtml"
)

// Fuzz compiles data as a standalone document and generates its HTML.
func Fuzz(data []byte) int {
	var docs, err = NewBundle().
		WithFileSystem(noFiles{}).
		AddString("fuzz.chtl", string(data)).
		Compile()
	if err != nil {
		return 0
	}
	if _, err = docs[0].HTML(chtlhtml.Options{CheckScripts: true}); err != nil {
		return 0
	}
	return 1
}

// noFiles fails every read, so that fuzzed imports never reach the disk.
type noFiles struct{}

func (noFiles) ReadFile(name string) ([]byte, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
