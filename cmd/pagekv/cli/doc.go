// Package cli implements the pagekv command-line interface.
//
// Every flag can also be set through an environment variable with the PAGEKV_
// prefix (dashes become underscores, e.g. PAGEKV_DIRECT_IO=false) or in a
// .env / .env.local file in the working directory.
//
// See pagekv --help for a list of all commands.
package cli
