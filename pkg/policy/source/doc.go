// Package source loads policy documents from YAML files and watches them
// for changes.
//
// FileSource loads a single file or every .yaml/.yml file in a directory;
// files that fail to parse are skipped with a warning so one bad document
// does not take down the rest. FileWatcher wraps fsnotify with debouncing
// so editors that write in bursts trigger a single reload.
package source
