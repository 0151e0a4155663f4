// Command carol is the CLI front end for the carold daemon: it composes
// and browses multimedia greetings, manages the local account session, and
// drives microphone recording sessions over the daemon's IPC socket.
package main
