// Package cli is the VaultShare command-line client.
//
// It runs either one command given on the command line or, with no
// arguments, an interactive REPL. Files are encrypted before upload and
// decrypted after download, so the server only ever holds ciphertext.
// Share passwords are checked against the password policy locally before
// any request is made.
package cli
