// Package proc reads the host process table and terminates processes.
//
// The selection and disposition logic never touches the operating system
// directly. It consumes Records produced by a Provider and kills through a
// Terminator, both of which have system implementations here built on
// gopsutil. Tests substitute fakes.
package proc
