package chtl

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/parse"
	"github.com/robfig/chtl/parsepasses"
	"github.com/robfig/chtl/template"
)

// Logger is used to print notifications and compile errors when using the
// "WatchFiles" feature.
var Logger = log.New(os.Stderr, "[chtl] ", 0)

type chtlFile struct{ name, content string }

// Bundle is a set of CHTL documents to compile.  Each file added is compiled
// as the main file of its own document; the files it imports are loaded
// through the bundle's file system.
type Bundle struct {
	files                 []chtlFile
	fs                    template.FileSystem
	err                   error
	watcher               *fsnotify.Watcher
	watched               map[string]bool
	recompilationCallback func([]*Document)
	recompiling           bool // the recompiler goroutine is running
	mu                    sync.Mutex
}

// NewBundle returns an empty bundle that reads from the local disk.
func NewBundle() *Bundle {
	return &Bundle{
		fs:      template.OSFileSystem{},
		watched: make(map[string]bool),
	}
}

// WithFileSystem makes the bundle read files, imports included, from fs.
func (b *Bundle) WithFileSystem(fs template.FileSystem) *Bundle {
	b.fs = fs
	return b
}

// WatchFiles tells the bundle to watch the files added to it, and the files
// they import, and to recompile when any of them changes.  It should be called
// once, before adding any files.  The new documents are passed to the
// recompilation callback.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	if watch && b.err == nil && b.watcher == nil {
		b.watcher, b.err = fsnotify.NewWatcher()
	}
	return b
}

// AddFile adds the given CHTL file to the bundle.  A byte order mark selects
// its encoding; it is UTF-8 otherwise.  If WatchFiles is on, it will be
// subsequently watched for updates.
func (b *Bundle) AddFile(filename string) *Bundle {
	var content, err = b.fs.ReadFile(filename)
	if err != nil {
		b.err = err
		return b
	}
	text, err := parse.Decode(content)
	if err != nil {
		b.err = err
		return b
	}
	if err := b.watch(filename); err != nil {
		b.err = err
	}
	return b.AddString(filename, text)
}

// AddString adds the given CHTL source to the bundle.  Imports are resolved
// relative to the directory of filename, which need not exist otherwise.
func (b *Bundle) AddString(filename, content string) *Bundle {
	b.files = append(b.files, chtlFile{filename, content})
	return b
}

// SetRecompilationCallback assigns the bundle a function to call with the
// documents produced by each recompilation.
func (b *Bundle) SetRecompilationCallback(c func([]*Document)) *Bundle {
	b.recompilationCallback = c
	return b
}

// Parse parses the files of the bundle without loading their imports.
func (b *Bundle) Parse() ([]*ast.ProgramNode, error) {
	if b.err != nil {
		return nil, b.err
	}
	var progs []*ast.ProgramNode
	for _, f := range b.files {
		var prog, err = parse.File(f.name, f.content)
		if err != nil {
			return nil, err
		}
		progs = append(progs, prog)
	}
	return progs, nil
}

// Compile parses every file in the bundle, loads their imports and resolves
// every template usage.  The returned documents are ready to be written out.
func (b *Bundle) Compile() ([]*Document, error) {
	var progs, err = b.Parse()
	if err != nil {
		return nil, err
	}

	var docs []*Document
	for _, prog := range progs {
		var ctx = template.NewContext(prog.Name, prog, b.fs)
		if err := parsepasses.LoadImports(ctx); err != nil {
			return nil, err
		}
		if err := parsepasses.Resolve(ctx); err != nil {
			return nil, err
		}
		for file, unit := range ctx.Units {
			if unit.Program == prog {
				continue // added by AddFile, or not a file at all
			}
			if err := b.watch(file); err != nil {
				return nil, err
			}
		}
		docs = append(docs, &Document{ctx})
	}

	if b.watcher != nil && !b.recompiling {
		b.recompiling = true
		go b.recompiler()
	}
	return docs, nil
}

// Close stops watching files.
func (b *Bundle) Close() error {
	if b.watcher == nil {
		return nil
	}
	return b.watcher.Close()
}

// watch adds filename to the watched files, once.
func (b *Bundle) watch(filename string) error {
	if b.watcher == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var path = filepath.Clean(filename)
	if b.watched[path] {
		return nil
	}
	if err := b.watcher.Add(path); err != nil {
		return err
	}
	b.watched[path] = true
	return nil
}

func (b *Bundle) recompiler() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			// Editors that save by renaming remove the watch.
			// Add it back, after a delay.
			if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				time.Sleep(10 * time.Millisecond)
				if err := b.watcher.Add(ev.Name); err != nil {
					Logger.Println(err)
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}

			var docs, err = b.recompile()
			if err != nil {
				Logger.Println(err)
				continue
			}
			for _, doc := range docs {
				for file, unit := range doc.Context.Units {
					if unit.Program == doc.Context.Program {
						continue
					}
					if err := b.watch(file); err != nil {
						Logger.Println(err)
					}
				}
			}
			Logger.Printf("recompiled after change to %s", ev.Name)
			if b.recompilationCallback != nil {
				b.recompilationCallback(docs)
			}

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			Logger.Println(err)
		}
	}
}

// recompile compiles the bundle's files again, reading the ones that came
// from the file system anew.
func (b *Bundle) recompile() ([]*Document, error) {
	var bundle = NewBundle().WithFileSystem(b.fs)
	for _, f := range b.files {
		if _, err := b.fs.ReadFile(f.name); err == nil {
			bundle.AddFile(f.name)
		} else {
			bundle.AddString(f.name, f.content)
		}
	}
	return bundle.Compile()
}
