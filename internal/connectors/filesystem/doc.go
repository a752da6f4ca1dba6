// Package filesystem reads text documents from a local directory tree.
//
// The Scanner walks a tree once; the Watcher reports documents as they are
// created or modified. Both skip hidden files and directories, files whose
// extension is not recognised, and paths matching an exclude glob.
package filesystem
