package ember

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// SubscriberFunc is called against the old and new interface pointer when
// the entry it subscribed to is replaced during a hot reload.
type SubscriberFunc func(oldPtr, newPtr any, userData any)

type subscriberRecord struct {
	callback SubscriberFunc
	userData any
}

type apiEntry struct {
	name        string
	ptr         any
	subscribers []subscriberRecord
}

// ApiRegistry publishes named interfaces (vtables) that extensions
// register on load and can hot-swap on reload (§4.1). Duplicates under
// the same name are allowed; First returns the earliest, Next walks the
// rest in registration order.
type ApiRegistry struct {
	mu      sync.Mutex
	entries []*apiEntry
}

func NewApiRegistry() *ApiRegistry {
	return &ApiRegistry{}
}

// Add appends a new entry under name and returns the interface pointer
// unchanged, for chaining at the registration call site.
func (r *ApiRegistry) Add(name string, interfacePtr any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &apiEntry{name: name, ptr: interfacePtr})
	return interfacePtr
}

// First returns the earliest-registered entry under name.
func (r *ApiRegistry) First(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.name == name {
			return e.ptr, true
		}
	}
	return nil, false
}

// Next returns the entry registered after the one currently holding prev,
// sharing prev's name. Used to iterate every registrant of a name.
func (r *ApiRegistry) Next(prev any) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, e := range r.entries {
		if e.ptr == prev {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}
	name := r.entries[idx].name
	for i := idx + 1; i < len(r.entries); i++ {
		if r.entries[i].name == name {
			return r.entries[i].ptr, true
		}
	}
	return nil, false
}

// Remove unlinks the entry currently holding interfacePtr and discards its
// subscriber list.
func (r *ApiRegistry) Remove(interfacePtr any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ptr == interfacePtr {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Replace substitutes newPtr for oldPtr in place, then invokes every
// subscriber registered against oldPtr in insertion order, and clears the
// subscriber list — subscriptions are single-shot per swap (§4.1, §5's
// "subscribe callbacks fire during replace in insertion order, then the
// list is cleared atomically").
func (r *ApiRegistry) Replace(oldPtr, newPtr any) bool {
	r.mu.Lock()
	var entry *apiEntry
	for _, e := range r.entries {
		if e.ptr == oldPtr {
			entry = e
			break
		}
	}
	if entry == nil {
		r.mu.Unlock()
		return false
	}
	entry.ptr = newPtr
	subs := entry.subscribers
	entry.subscribers = nil
	r.mu.Unlock()

	for _, s := range subs {
		s.callback(oldPtr, newPtr, s.userData)
	}
	return true
}

// Subscribe appends a callback to interfacePtr's entry, fired once on its
// next Replace.
func (r *ApiRegistry) Subscribe(interfacePtr any, callback SubscriberFunc, userData any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ptr == interfacePtr {
			e.subscribers = append(e.subscribers, subscriberRecord{callback, userData})
			return
		}
	}
}

// Extension is a shared library resident on disk, loaded through Go's
// stdlib plugin package (Linux/macOS only — there is no third-party
// alternative for this in the ecosystem, so this one concern stays on the
// standard library by necessity, not by default).
type Extension struct {
	Name          string
	LibPath       string
	TransientPath string

	loadSymbol   string
	unloadSymbol string

	handle  *plugin.Plugin
	counter int
}

// ExtensionLoader copies extensions to a transient path before opening
// them (so the original stays writable for rebuilds). It looks up no
// symbols in the opened plugin: the load/unload entry points are the
// funcs the caller passes to Load, Unload and Reload.
type ExtensionLoader struct {
	logger   Logger
	registry *ApiRegistry
	loaded   map[string]*Extension
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
}

func NewExtensionLoader(registry *ApiRegistry, logger Logger) *ExtensionLoader {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &ExtensionLoader{
		logger:   logger,
		registry: registry,
		loaded:   make(map[string]*Extension),
	}
}

// nextTransientPath builds <library file name>_<counter>.tmp next to the
// library, incrementing the per-extension counter on every reload so the OS never
// maps the same inode twice while a prior reload's copy may still be
// draining in-flight calls (§12.1).
func (e *Extension) nextTransientPath() string {
	e.counter++
	dir := filepath.Dir(e.LibPath)
	base := filepath.Base(e.LibPath)
	return filepath.Join(dir, fmt.Sprintf("%s_%d.tmp", base, e.counter))
}

// Load implements the load protocol (§4.1): idempotent on an already
// loaded path, copies to a transient path, opens it, and calls its Load
// entry point with reloading=false.
func (l *ExtensionLoader) Load(name, libPath string, load func(*ApiRegistry, *Extension, bool)) (*Extension, error) {
	l.mu.Lock()
	if ext, ok := l.loaded[libPath]; ok {
		l.mu.Unlock()
		return ext, nil
	}
	l.mu.Unlock()

	ext := &Extension{Name: name, LibPath: libPath}
	transient := ext.nextTransientPath()
	if err := copyFile(libPath, transient); err != nil {
		return nil, &ConfigurationError{Kind: "extension_copy_failed", Message: err.Error()}
	}
	ext.TransientPath = transient

	handle, err := plugin.Open(transient)
	if err != nil {
		return nil, &ConfigurationError{Kind: "extension_open_failed", Message: err.Error()}
	}
	ext.handle = handle

	l.mu.Lock()
	l.loaded[libPath] = ext
	l.mu.Unlock()

	load(l.registry, ext, false)
	l.logger.Infof("loaded extension %q from %s", name, libPath)
	return ext, nil
}

// Unload calls the extension's unload entry (reloading=false per the
// caller's choice) and drops the handle.
func (l *ExtensionLoader) Unload(ext *Extension, unload func(*ApiRegistry, *Extension, bool), reloading bool) {
	unload(l.registry, ext, reloading)
	l.mu.Lock()
	delete(l.loaded, ext.LibPath)
	l.mu.Unlock()
}

// Reload implements the hot-reload protocol (§4.1): a fresh transient
// copy, re-open, call the caller's load with reloading=true (the extension
// is expected to call Replace for each of its interfaces), then unload
// the old handle with reloading=true. A failed reload keeps the previous
// vtables and never crashes the host (§7's user-visible behavior).
func (l *ExtensionLoader) Reload(ext *Extension, load func(*ApiRegistry, *Extension, bool), unload func(*ApiRegistry, *Extension, bool)) error {
	transient := ext.nextTransientPath()
	if err := copyFile(ext.LibPath, transient); err != nil {
		l.logger.Errorf("reload of %q failed copying transient: %v", ext.Name, err)
		return &ConfigurationError{Kind: "extension_reload_copy_failed", Message: err.Error()}
	}

	newHandle, err := plugin.Open(transient)
	if err != nil {
		l.logger.Errorf("reload of %q failed opening transient: %v", ext.Name, err)
		return &ConfigurationError{Kind: "extension_reload_open_failed", Message: err.Error()}
	}

	oldHandle := ext.handle
	ext.handle = newHandle
	ext.TransientPath = transient

	load(l.registry, ext, true)
	_ = oldHandle // the old .so stays mapped for the process lifetime; Go has no dlclose.
	unload(l.registry, ext, true)

	l.logger.Infof("reloaded extension %q", ext.Name)
	return nil
}

// Watch starts an fsnotify watcher over dir and calls onChange with the
// changed file's path whenever a write event lands on a loaded library —
// the trigger for Reload (§4.1 "when the watcher reports a changed file
// timestamp on a loaded library").
func (l *ExtensionLoader) Watch(dir string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &RuntimeError{Kind: "watcher_init_failed", Message: err.Error()}
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return &RuntimeError{Kind: "watcher_add_failed", Message: err.Error()}
	}
	l.watcher = watcher

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					l.mu.Lock()
					_, isLoaded := l.loaded[ev.Name]
					l.mu.Unlock()
					if isLoaded {
						onChange(ev.Name)
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (l *ExtensionLoader) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}

// shaderVariantSalt is a random UUID drawn once per process. Nothing in
// this module reads it.
var shaderVariantSalt = uuid.New()
