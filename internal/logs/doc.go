// Package logs reads the stylegen log file for the `stylegen logs` command.
//
// Tail returns the last lines of the file together with the byte offset they
// end at; Follow then polls from that offset and hands each new line to a
// callback until the context is cancelled.
package logs
