// Package file provides TOML-backed settings loading.
//
// Settings live in ~/.gazetteer/config.toml by default. A missing
// file is not an error: the tool runs on defaults and the file only
// needs to exist to override them.
package file
